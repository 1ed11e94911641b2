package bmson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/chart"
	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/notes"
	"github.com/nitro-chart/bmscore/internal/objid"
)

const defaultResolution = 240

// Ingest deserializes raw BMSON bytes and projects the result into a
// chart.Chart, the same semantic model the BMS processors build, so a
// single precomputer and playback core serve both formats. Malformed JSON
// and an absent or non-positive info.init_bpm are structured errors (nil
// chart); unrecognized fields and an absent info.artist are warnings. No
// other field is checked for presence: an absent field takes its zero
// value or the documented default.
func Ingest(raw []byte) (*chart.Chart, []diag.Diagnostic) {
	var doc Doc
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var diags []diag.Diagnostic
	if err := dec.Decode(&doc); err != nil {
		// Retry without strict field checking so unknown fields become a
		// warning instead of a hard failure.
		var lenient Doc
		if err2 := json.Unmarshal(raw, &lenient); err2 != nil {
			return nil, []diag.Diagnostic{diag.Err(diag.StageBMSON, diag.CategoryBMSONError,
				"E_BMSON_MALFORMED", "malformed BMSON document: "+err2.Error(), diag.Range{})}
		}
		diags = append(diags, diag.Warn(diag.StageBMSON, diag.CategoryBMSONError,
			"W_BMSON_UNKNOWN_FIELD", "document has unrecognized fields: "+err.Error(), diag.Range{}))
		doc = lenient
	}

	if doc.Info.Artist == "" {
		diags = append(diags, diag.Warn(diag.StageBMSON, diag.CategoryBMSONError,
			"W_BMSON_MISSING_ARTIST", "info.artist is absent", diag.Range{}))
	}
	if doc.Info.InitBPM <= 0 {
		return nil, append(diags, diag.Err(diag.StageBMSON, diag.CategoryBMSONError,
			"E_BMSON_BAD_INIT_BPM", "info.init_bpm must be a positive finite number", diag.Range{}))
	}

	resolution := uint64(defaultResolution)
	if doc.Info.Resolution != nil && *doc.Info.Resolution > 0 {
		resolution = *doc.Info.Resolution
	}
	den := 4 * resolution

	c := chart.New()
	c.Header.Title = doc.Info.Title
	c.Header.Subtitle = doc.Info.Subtitle
	c.Header.Artist = doc.Info.Artist
	c.Header.Genre = doc.Info.Genre
	c.Header.BPM = bmstime.NewFromFloat(doc.Info.InitBPM)
	c.Header.PlayLevel = int(doc.Info.Level)
	c.Header.Preview = doc.Info.PreviewMusic
	if doc.Info.JudgeRank != nil {
		c.Header.JudgeRank = bmstime.NewFromFloat(*doc.Info.JudgeRank)
	}
	if doc.Info.Total != nil {
		c.Header.Total = bmstime.NewFromFloat(*doc.Info.Total)
	}

	at := func(y Pulse) bmstime.ObjTime { return bmstime.NewObjTime(0, uint64(y), den) }

	for _, e := range doc.BpmEvents {
		bpm := bmstime.NewFromFloat(e.BPM)
		c.Arranger(at(e.Y)).BPM = &bpm
	}
	for _, e := range doc.StopEvents {
		// Pulses reduce to a Y length (measures) directly; re-expressed in
		// the same 192nd-note-equivalent unit ArrangerEvent.Stop carries
		// for BMS charts (1 measure = 192 192nd notes) so the precomputer's
		// ÷48-to-beats fold works identically regardless of chart origin.
		yLength := bmstime.NewFromInt(int64(e.Duration)).Div(bmstime.NewFromInt(int64(den)))
		stop192 := yLength.Mul(bmstime.NewFromInt(192))
		c.Arranger(at(e.Y)).Stop = &stop192
	}
	for _, e := range doc.ScrollEvents {
		factor := bmstime.NewFromFloat(e.Rate)
		c.Arranger(at(e.Y)).ScrollFactor = &factor
	}

	for i, ch := range doc.SoundChannels {
		id, err := objid.FromInt(i)
		if err != nil {
			diags = append(diags, diag.Warn(diag.StageBMSON, diag.CategoryBMSONError,
				"W_BMSON_TOO_MANY_CHANNELS", fmt.Sprintf("sound_channels[%d] exceeds the 62*62 object id space, dropped", i), diag.Range{}))
			continue
		}
		c.Sounds[id] = chart.SoundDef{Path: ch.Name}
		for _, n := range ch.Notes {
			channelID := "BGM"
			if n.X != nil && *n.X != 0 {
				channelID = fmt.Sprintf("X%d", *n.X)
			}
			obj := notes.WavObj{Offset: at(n.Y), ChannelID: channelID, WavID: id, Continue: n.Continue}
			if n.Length > 0 {
				ly := bmstime.NewFromInt(int64(n.Length)).Div(bmstime.NewFromInt(int64(den)))
				obj.LengthY = &ly
			}
			c.Notes.Push(obj)
		}
	}

	if doc.Bga != nil {
		bmpByID := map[int]objid.ID{}
		for i, h := range doc.Bga.BgaHeader {
			id, err := objid.FromInt(i)
			if err != nil {
				continue
			}
			c.Graphics[id] = chart.GraphicDef{Path: h.Name}
			bmpByID[h.ID] = id
		}
		applyBgaEvents(c, doc.Bga.BgaEvents, bmpByID, at, func(g *chart.GraphicsEvent, id objid.ID) { g.BGABase = &id })
		applyBgaEvents(c, doc.Bga.LayerEvents, bmpByID, at, func(g *chart.GraphicsEvent, id objid.ID) { g.BGAOverlay = &id })
		applyBgaEvents(c, doc.Bga.PoorEvents, bmpByID, at, func(g *chart.GraphicsEvent, id objid.ID) { g.BGAPoor = &id })
	}

	return c, diags
}

func applyBgaEvents(c *chart.Chart, events []BgaEvent, bmpByID map[int]objid.ID, at func(Pulse) bmstime.ObjTime, apply func(*chart.GraphicsEvent, objid.ID)) {
	for _, e := range events {
		id, ok := bmpByID[e.ID]
		if !ok {
			continue
		}
		apply(c.GraphicsAt(at(e.Y)), id)
	}
}
