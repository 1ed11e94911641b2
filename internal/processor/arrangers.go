package processor

import (
	"strconv"
	"strings"

	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/chart"
	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/objid"
	"github.com/nitro-chart/bmscore/internal/token"
)

// ArrangerHandler folds everything that changes the timeline's shape or
// pace: section lengths, tempo, stop, scroll and speed factor changes.
type ArrangerHandler struct{}

func (ArrangerHandler) Handle(tok token.Token, ctx *Context) {
	if tok.Kind == token.KindHeader {
		handleArrangerHeader(tok, ctx)
		return
	}
	if tok.Kind != token.KindMessage {
		return
	}
	switch token.Channel(tok.Channel) {
	case token.ChSectionLen:
		handleSectionLen(tok, ctx)
	case token.ChBPM:
		handleDirectBPM(tok, ctx)
	case token.ChBPMByID:
		applyIDArranger(tok, ctx, ctx.bpmDefs, "W_PROCESS_UNKNOWN_BPM_ID", func(e *chart.ArrangerEvent, v bmstime.Decimal) { e.BPM = &v })
	case token.ChStopByID:
		applyIDArranger(tok, ctx, ctx.stopDefs, "W_PROCESS_UNKNOWN_STOP_ID", func(e *chart.ArrangerEvent, v bmstime.Decimal) { e.Stop = &v })
	case token.ChScrollByID:
		applyIDArranger(tok, ctx, ctx.scrollDefs, "W_PROCESS_UNKNOWN_SCROLL_ID", func(e *chart.ArrangerEvent, v bmstime.Decimal) { e.ScrollFactor = &v })
	case token.ChSpeedByID:
		applyIDArranger(tok, ctx, ctx.speedDefs, "W_PROCESS_UNKNOWN_SPEED_ID", func(e *chart.ArrangerEvent, v bmstime.Decimal) { e.SpeedFactor = &v })
	}
}

func handleArrangerHeader(tok token.Token, ctx *Context) {
	for _, kw := range []struct {
		prefix string
		defs   map[objid.ID]bmstime.Decimal
		code   string
	}{
		{"BPM", ctx.bpmDefs, "W_PROCESS_BAD_BPM_DEF"},
		{"STOP", ctx.stopDefs, "W_PROCESS_BAD_STOP_DEF"},
		{"SCROLL", ctx.scrollDefs, "W_PROCESS_BAD_SCROLL_DEF"},
		{"SPEED", ctx.speedDefs, "W_PROCESS_BAD_SPEED_DEF"},
	} {
		id, ok := headerID(tok.Name, kw.prefix, ctx.ChannelEncoding)
		if !ok {
			continue
		}
		v, err := bmstime.NewFromString(strings.TrimSpace(tok.Args))
		if err != nil {
			ctx.warn(diag.StageProcess, kw.code, "header #"+tok.Name+" has a non-numeric value")
			return
		}
		kw.defs[id] = v
		return
	}
}

func handleSectionLen(tok token.Token, ctx *Context) {
	v, err := bmstime.NewFromString(strings.TrimSpace(tok.Payload))
	if err != nil {
		ctx.warn(diag.StageProcess, "W_PROCESS_BAD_SECLEN", "channel 02 message has a non-numeric payload")
		return
	}
	ctx.Chart.SectionLengths[bmstime.Track(tok.Track)] = v
}

// handleDirectBPM decodes channel 03's two-hex-digit-per-slot direct BPM
// encoding (an integer 1..255, unlike the decimal #BPMxx tables).
func handleDirectBPM(tok token.Token, ctx *Context) {
	for _, slot := range decodeSlots(tok) {
		v, err := strconv.ParseUint(slot.Raw, 16, 8)
		if err != nil {
			ctx.warn(diag.StageProcess, "W_PROCESS_BAD_DIRECT_BPM", "channel 03 slot is not a hex byte")
			continue
		}
		bpm := bmstime.NewFromInt(int64(v))
		ctx.Chart.Arranger(slot.At).BPM = &bpm
	}
}

// applyIDArranger decodes every slot of an indirection channel (08/09/SC/SP)
// as an object id, looks it up in defs, and applies it to the arranger event
// at that slot's position.
func applyIDArranger(tok token.Token, ctx *Context, defs map[objid.ID]bmstime.Decimal, missingCode string, apply func(*chart.ArrangerEvent, bmstime.Decimal)) {
	for _, slot := range decodeSlots(tok) {
		id, ok := decodeID(slot.Raw, ctx.ChannelEncoding)
		if !ok {
			ctx.warn(diag.StageProcess, "W_PROCESS_BAD_ID_SLOT", "message "+tok.Channel+" has a non-base62 payload slot")
			continue
		}
		v, ok := defs[id]
		if !ok {
			ctx.warn(diag.StageProcess, missingCode, "message "+tok.Channel+" references undefined id "+id.String())
			continue
		}
		apply(ctx.Chart.Arranger(slot.At), v)
	}
}
