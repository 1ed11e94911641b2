package processor

import (
	"testing"

	"github.com/nitro-chart/bmscore/internal/bmsast"
	"github.com/nitro-chart/bmscore/internal/bmseval"
	"github.com/nitro-chart/bmscore/internal/bmslex"
	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/chart"
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
	c, _ := Process(flat, nil)
	return c
}

func TestHeaderHandlerScalars(t *testing.T) {
	c := processSource(t, "#TITLE Sample\n#ARTIST Someone\n#BPM 130\n#PLAYLEVEL 7\n")
	if c.Header.Title != "Sample" {
		t.Fatalf("Title = %q", c.Header.Title)
	}
	if c.Header.Artist != "Someone" {
		t.Fatalf("Artist = %q", c.Header.Artist)
	}
	if c.Header.PlayLevel != 7 {
		t.Fatalf("PlayLevel = %d", c.Header.PlayLevel)
	}
	want := bmstime.NewFromInt(130)
	if !c.Header.BPM.Equal(want) {
		t.Fatalf("BPM = %v, want %v", c.Header.BPM, want)
	}
}

func TestWavHandlerDefinesAndPlacesNotes(t *testing.T) {
	c := processSource(t, "#WAV01 kick.wav\n#00111:01\n")
	if c.Sounds["01"].Path != "kick.wav" {
		t.Fatalf("sound 01 path = %q", c.Sounds["01"].Path)
	}
	placed := c.Notes.ByChannel("11")
	if len(placed) != 1 {
		t.Fatalf("expected 1 placed note, got %d", len(placed))
	}
	if obj := c.Notes.At(placed[0]); obj.WavID != "01" {
		t.Fatalf("placed wav id = %q", obj.WavID)
	}
}

func TestArrangerHandlerDirectAndByIDBPM(t *testing.T) {
	c := processSource(t, "#BPM01 150\n#00103:01\n#00108:01\n")
	at := bmstime.NewObjTime(1, 0, 1)
	ev, ok := c.Arrangers[at]
	if !ok || ev.BPM == nil {
		t.Fatalf("expected an arranger BPM change at track 1")
	}
}

func TestOthersHandlerTextByID(t *testing.T) {
	c := processSource(t, "#TEXT01 Hello\n#00199:01\n")
	at := bmstime.NewObjTime(1, 0, 1)
	ev, ok := c.Others[at]
	if !ok || ev.Text == nil || *ev.Text != "Hello" {
		t.Fatalf("expected text event %q at track 1", "Hello")
	}
}

func TestOthersHandlerJudgeOverrideByID(t *testing.T) {
	c := processSource(t, "#EXRANK01 3\n#EXRANK02 2\n#001A0:01000200\n#002A0:02000100\n")
	cases := []struct {
		at   bmstime.ObjTime
		want int
	}{
		{bmstime.NewObjTime(1, 0, 4), 3},
		{bmstime.NewObjTime(1, 2, 4), 2},
		{bmstime.NewObjTime(2, 0, 4), 2},
		{bmstime.NewObjTime(2, 2, 4), 3},
	}
	for _, tc := range cases {
		ev, ok := c.Others[tc.at]
		if !ok || ev.JudgeLevel == nil {
			t.Fatalf("expected a judge override at %v", tc.at)
		}
		if *ev.JudgeLevel != tc.want {
			t.Fatalf("judge override at %v = %d, want %d", tc.at, *ev.JudgeLevel, tc.want)
		}
	}
}

func TestChannelEncodingDefaultsToBase36Folding(t *testing.T) {
	c := processSource(t, "#WAVaa kick.wav\n#00111:AA\n")
	placed := c.Notes.ByChannel("11")
	if len(placed) != 1 {
		t.Fatalf("expected 1 placed note, got %d", len(placed))
	}
	if obj := c.Notes.At(placed[0]); obj.WavID != "AA" {
		t.Fatalf("placed wav id = %q, want folded %q (lowercase def should match uppercase slot)", obj.WavID, "AA")
	}
}

func TestBase62HeaderDisablesFolding(t *testing.T) {
	c := processSource(t, "#BASE 62\n#WAVaa kick.wav\n#00111:AA\n")
	if _, ok := c.Sounds["AA"]; ok {
		t.Fatalf("expected #WAVaa to define id %q, not the folded %q under base-62", "aa", "AA")
	}
	if _, ok := c.Sounds["aa"]; !ok {
		t.Fatalf("expected #WAVaa to define unfolded id %q under base-62", "aa")
	}
	placed := c.Notes.ByChannel("11")
	if len(placed) != 1 {
		t.Fatalf("expected 1 placed note, got %d", len(placed))
	}
	if obj := c.Notes.At(placed[0]); obj.WavID != "AA" {
		t.Fatalf("placed wav id = %q, want %q (unfolded, distinct from the lowercase def)", obj.WavID, "AA")
	}
}

func TestBmpHandlerDefinesAndCropsBGA(t *testing.T) {
	c := processSource(t, "#BMP01 back.png\n#BGA02 01 0 0 100 100 0 0\n")
	if c.Graphics["01"].Path != "back.png" {
		t.Fatalf("graphic 01 path = %q", c.Graphics["01"].Path)
	}
	crop, ok := c.BGADefs["02"]
	if !ok || crop.SourceBMP != "01" || crop.SrcW != 100 || crop.SrcH != 100 {
		t.Fatalf("unexpected crop def: %+v", crop)
	}
}
