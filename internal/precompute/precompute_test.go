package precompute

import (
	"testing"

	"github.com/nitro-chart/bmscore/internal/bmsast"
	"github.com/nitro-chart/bmscore/internal/bmseval"
	"github.com/nitro-chart/bmscore/internal/bmslex"
	"github.com/nitro-chart/bmscore/internal/bmson"
	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/chart"
	"github.com/nitro-chart/bmscore/internal/chartevent"
	"github.com/nitro-chart/bmscore/internal/keylayout"
	"github.com/nitro-chart/bmscore/internal/processor"
	"github.com/nitro-chart/bmscore/internal/rng"
)

func processSource(t *testing.T, src string) *chart.Chart {
	t.Helper()
	toks, lexDiags := bmslex.New(src).Tokenize()
	if len(lexDiags) != 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexDiags)
	}
	units, err := bmsast.Build(toks)
	if err != nil {
		t.Fatalf("ast build failed: %v", err)
	}
	flat, _ := bmseval.Eval(units, rng.NewFixed())
	c, _ := processor.Process(flat, nil)
	return c
}

func TestBuildBMSONConstantBPMActivation(t *testing.T) {
	doc := `{
	  "version": "1.0.0",
	  "info": {"artist": "a", "init_bpm": 120, "resolution": 240},
	  "sound_channels": [
	    {"name": "hit.wav", "notes": [{"y": 240, "x": 1, "l": 0, "c": false}]}
	  ]
	}`
	c, diags := bmson.Ingest([]byte(doc))
	if c == nil {
		t.Fatalf("ingest failed: %v", diags)
	}
	idx, _ := Build(c, keylayout.Beat7K{})
	var found bool
	for _, e := range idx.AllEvents {
		if n, ok := e.Event.(chartevent.Note); ok && n.Key == 1 {
			found = true
			if got := e.ActivateTime.Seconds(); got < 0.49 || got > 0.51 {
				t.Fatalf("activate time = %v, want ~0.5s", got)
			}
		}
	}
	if !found {
		t.Fatalf("expected a note event for key 1")
	}
}

func TestBuildBMSONContinueTiming(t *testing.T) {
	doc := `{
	  "version": "1.0.0",
	  "info": {"artist": "a", "init_bpm": 120, "resolution": 240},
	  "sound_channels": [
	    {"name": "hit.wav", "notes": [{"y": 480, "x": 1, "c": true}]}
	  ],
	  "stop_events": [{"y": 960, "duration": 240}]
	}`
	c, diags := bmson.Ingest([]byte(doc))
	if c == nil {
		t.Fatalf("ingest failed: %v", diags)
	}
	idx, _ := Build(c, keylayout.Beat7K{})
	var found bool
	for _, e := range idx.AllEvents {
		n, ok := e.Event.(chartevent.Note)
		if !ok || n.Key != 1 {
			continue
		}
		found = true
		if n.ContinuePlay == nil {
			t.Fatalf("expected ContinuePlay to be set for a continue note")
		}
		if got := n.ContinuePlay.Seconds(); got < 0.99 || got > 1.01 {
			t.Fatalf("continue_play = %v, want ~1.0s (stop at y=960 is past the note and must not contribute)", got)
		}
	}
	if !found {
		t.Fatalf("expected a note event for key 1")
	}
}

func TestBuildStopDelaysSubsequentActivation(t *testing.T) {
	c := processSource(t, "#BPM 120\n#STOP01 48\n#WAV01 hit.wav\n#00009:01\n#00111:01\n")
	idx, _ := Build(c, keylayout.Beat7K{})
	var found bool
	for _, e := range idx.AllEvents {
		n, ok := e.Event.(chartevent.Note)
		if !ok || n.Key != 1 {
			continue
		}
		found = true
		// Y=0 carries a 48/192-measure stop (1 beat at BPM 120 = 0.5s);
		// the note at Y=1 (track 1, offset 0) follows it, so its
		// activation time is the 0.5s stop plus the 2.0s it takes to
		// travel a full measure at BPM 120, not just the 2.0s travel time.
		if got := e.ActivateTime.Seconds(); got < 2.49 || got > 2.51 {
			t.Fatalf("activate time = %v, want ~2.5s (2.0s travel + 0.5s stop)", got)
		}
	}
	if !found {
		t.Fatalf("expected a note event for key 1")
	}
}

func TestBuildBMSLongNoteFromLNOBJMarker(t *testing.T) {
	c := processSource(t, "#BPM 120\n#LNOBJ ZZ\n#WAV01 hit.wav\n#WAVZZ end.wav\n#00111:01\n#00211:ZZ\n")
	idx, _ := Build(c, keylayout.Beat7K{})
	var found []chartevent.Note
	for _, e := range idx.AllEvents {
		if n, ok := e.Event.(chartevent.Note); ok && n.Key == 1 {
			found = append(found, n)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected exactly 1 note event (the LNOBJ marker folds into the opening note), got %d", len(found))
	}
	n := found[0]
	if n.Kind != chartevent.KindLong {
		t.Fatalf("kind = %v, want KindLong", n.Kind)
	}
	if n.Length == nil {
		t.Fatalf("expected a length on the long note")
	}
	want := bmstime.NewFromInt(1)
	if !n.Length.Equal(want) {
		t.Fatalf("length = %v, want %v (Y difference between track 1 and track 2)", n.Length, want)
	}
}

func TestBuildEmitsBarlinePerTrack(t *testing.T) {
	doc := `{"version":"1.0.0","info":{"artist":"a","init_bpm":120,"resolution":240},
	  "sound_channels":[{"name":"hit.wav","notes":[{"y":960,"x":1}]}]}`
	c, _ := bmson.Ingest([]byte(doc))
	idx, _ := Build(c, keylayout.Beat7K{})
	var barlines int
	for _, e := range idx.AllEvents {
		if _, ok := e.Event.(chartevent.BarLine); ok {
			barlines++
		}
	}
	if barlines != 1 {
		t.Fatalf("expected 1 barline (single track 0), got %d", barlines)
	}
}
