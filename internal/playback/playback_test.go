package playback

import (
	"testing"

	"github.com/nitro-chart/bmscore/internal/bmson"
	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/chartevent"
	"github.com/nitro-chart/bmscore/internal/keylayout"
	"github.com/nitro-chart/bmscore/internal/precompute"
)

func buildIndex(t *testing.T, doc string) *precompute.Index {
	t.Helper()
	c, diags := bmson.Ingest([]byte(doc))
	if c == nil {
		t.Fatalf("ingest failed: %v", diags)
	}
	idx, _ := precompute.Build(c, keylayout.Beat7K{})
	return idx
}

const constantBPMDoc = `{
  "version": "1.0.0",
  "info": {"artist": "a", "init_bpm": 120, "resolution": 240},
  "sound_channels": [
    {"name": "hit.wav", "notes": [{"y": 480, "x": 1}]}
  ]
}`

func TestEnergyConservationAtConstantBPM(t *testing.T) {
	idx := buildIndex(t, constantBPMDoc)
	core := New(idx)
	core.StartPlay(0)
	core.StepTo(bmstime.TimeStamp(bmstime.SpanFromSeconds(1.0).Nanoseconds()))
	vel := core.velocity()
	want := vel.Mul(bmstime.NewFromFloat(1.0))
	got := core.ProgressedY()
	diff := got.Sub(want).Abs()
	if diff.GreaterThan(bmstime.NewFromFloat(1e-6)) {
		t.Fatalf("progressed_y = %v, want %v", got, want)
	}
}

func TestUpdateFiresEachEventExactlyOnce(t *testing.T) {
	idx := buildIndex(t, constantBPMDoc)
	core := New(idx)
	core.StartPlay(0)

	seen := map[uint64]int{}
	for step := 1; step <= 10; step++ {
		now := bmstime.TimeStamp(bmstime.SpanFromSeconds(float64(step) * 0.2).Nanoseconds())
		for _, e := range core.Update(now) {
			seen[e.ID]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("event %d fired %d times, want 1", id, n)
		}
	}
	var haveNote bool
	for _, e := range idx.AllEvents {
		if _, ok := e.Event.(chartevent.Note); ok {
			haveNote = true
			if seen[e.ID] != 1 {
				t.Fatalf("note event %d never fired", e.ID)
			}
		}
	}
	if !haveNote {
		t.Fatalf("expected at least one note in the index")
	}
}

func TestTimeRewindIsNoOp(t *testing.T) {
	idx := buildIndex(t, constantBPMDoc)
	core := New(idx)
	core.StartPlay(0)
	core.StepTo(bmstime.TimeStamp(bmstime.SpanFromSeconds(1.0).Nanoseconds()))
	y1 := core.ProgressedY()
	core.StepTo(bmstime.TimeStamp(bmstime.SpanFromSeconds(0.5).Nanoseconds()))
	y2 := core.ProgressedY()
	if !y1.Equal(y2) {
		t.Fatalf("rewind changed progressed_y: %v -> %v", y1, y2)
	}
}

func TestStepToAppliesAllCoincidentFlowEvents(t *testing.T) {
	doc := `{
	  "version": "1.0.0",
	  "info": {"artist": "a", "init_bpm": 120, "resolution": 240},
	  "bpm_events": [{"y": 960, "bpm": 240}],
	  "scroll_events": [{"y": 960, "rate": 2.0}],
	  "sound_channels": [
	    {"name": "hit.wav", "notes": [{"y": 1920, "x": 1}]}
	  ]
	}`
	idx := buildIndex(t, doc)
	var atY1 int
	for _, e := range idx.FlowEvents {
		if e.Position.Equal(bmstime.NewFromInt(1)) {
			atY1++
		}
	}
	if atY1 != 2 {
		t.Fatalf("expected 2 coincident flow events at Y=1, got %d", atY1)
	}

	core := New(idx)
	core.StartPlay(0)
	// Travel past Y=1 (the coincident BPM+scroll change) at the initial
	// 120 BPM velocity (0.5 Y/s): 3 seconds covers 1.5 Y.
	core.StepTo(bmstime.TimeStamp(bmstime.SpanFromSeconds(3.0).Nanoseconds()))

	if !core.currentBPM.Equal(bmstime.NewFromInt(240)) {
		t.Fatalf("currentBPM = %v, want 240 (the coincident BPM change was skipped)", core.currentBPM)
	}
	if !core.currentScroll.Equal(bmstime.NewFromFloat(2.0)) {
		t.Fatalf("currentScroll = %v, want 2.0 (the coincident scroll change was skipped)", core.currentScroll)
	}
}

func TestVisibleEventsDisplayRatioScalesWithScroll(t *testing.T) {
	idx := buildIndex(t, constantBPMDoc)
	core := New(idx)
	core.StartPlay(0)
	core.currentScroll = bmstime.NewFromFloat(0.5)
	core.Update(0)

	var found bool
	for _, ve := range core.VisibleEvents() {
		if _, ok := ve.Event.Event.(chartevent.Note); !ok {
			continue
		}
		found = true
		// note sits at Y=0.5, one half of the 1.0 window at BPM 120, so
		// its un-scrolled ratio is 0.5; a 0.5 scroll factor halves that
		// to 0.25.
		want := bmstime.NewFromFloat(0.25)
		if diff := ve.Start.Sub(want).Abs(); diff.GreaterThan(bmstime.NewFromFloat(1e-9)) {
			t.Fatalf("display ratio start = %v, want %v", ve.Start, want)
		}
	}
	if !found {
		t.Fatalf("expected the note to be in the preload window")
	}
}

func TestScrollDoesNotAffectActivateTime(t *testing.T) {
	idx := buildIndex(t, constantBPMDoc)
	var before bmstime.TimeSpan
	for _, e := range idx.AllEvents {
		if _, ok := e.Event.(chartevent.Note); ok {
			before = e.ActivateTime
		}
	}
	core := New(idx)
	core.currentScroll = bmstime.NewFromFloat(0.5)
	for _, e := range idx.AllEvents {
		if _, ok := e.Event.(chartevent.Note); ok {
			if e.ActivateTime != before {
				t.Fatalf("changing scroll on the core mutated the precomputed activate time")
			}
		}
	}
}
