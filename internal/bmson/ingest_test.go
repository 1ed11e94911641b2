package bmson

import (
	"testing"

	"github.com/nitro-chart/bmscore/internal/bmstime"
)

const sampleDoc = `{
  "version": "1.0.0",
  "info": {
    "title": "Sample",
    "artist": "Someone",
    "genre": "Test",
    "level": 5,
    "init_bpm": 120,
    "resolution": 240
  },
  "bpm_events": [{"y": 480, "bpm": 180}],
  "stop_events": [{"y": 960, "duration": 240}],
  "sound_channels": [
    {"name": "kick.wav", "notes": [{"y": 0, "x": 1, "l": 0, "c": false}]}
  ]
}`

func TestIngestBasicFields(t *testing.T) {
	c, diags := Ingest([]byte(sampleDoc))
	if c == nil {
		t.Fatalf("unexpected nil chart, diags=%v", diags)
	}
	if c.Header.Title != "Sample" || c.Header.Artist != "Someone" {
		t.Fatalf("header = %+v", c.Header)
	}
	if !c.Header.BPM.Equal(bmstime.NewFromInt(120)) {
		t.Fatalf("BPM = %v", c.Header.BPM)
	}
	placed := c.Notes.InsertionOrder()
	if len(placed) != 1 || placed[0].ChannelID != "X1" {
		t.Fatalf("unexpected placed notes: %+v", placed)
	}
	at := bmstime.NewObjTime(0, 480, 4*240)
	ev, ok := c.Arrangers[at]
	if !ok || ev.BPM == nil || !ev.BPM.Equal(bmstime.NewFromInt(180)) {
		t.Fatalf("expected a bpm change of 180 at y=480")
	}
}

func TestIngestRejectsNonPositiveBPM(t *testing.T) {
	_, diags := Ingest([]byte(`{"version":"1.0.0","info":{"artist":"a","init_bpm":0}}`))
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for init_bpm <= 0")
	}
}
