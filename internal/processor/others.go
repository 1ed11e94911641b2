package processor

import (
	"strconv"
	"strings"

	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/token"
)

// OthersHandler folds the miscellaneous by-id channels that don't fit the
// arranger or graphics families: displayed text, judge-rank overrides,
// option changes, and the direct BGM/key volume channels.
type OthersHandler struct{}

func (OthersHandler) Handle(tok token.Token, ctx *Context) {
	if tok.Kind == token.KindHeader {
		handleOthersHeader(tok, ctx)
		return
	}
	if tok.Kind != token.KindMessage {
		return
	}
	switch token.Channel(tok.Channel) {
	case token.ChTextByID:
		for _, slot := range decodeSlots(tok) {
			id, ok := decodeID(slot.Raw, ctx.ChannelEncoding)
			if !ok {
				continue
			}
			if text, ok := ctx.textDefs[id]; ok {
				ctx.Chart.OtherAt(slot.At).Text = &text
			} else {
				ctx.warn(diag.StageProcess, "W_PROCESS_UNKNOWN_TEXT_ID", "channel 99 references undefined text id "+id.String())
			}
		}
	case token.ChJudgeByID:
		for _, slot := range decodeSlots(tok) {
			id, ok := decodeID(slot.Raw, ctx.ChannelEncoding)
			if !ok {
				continue
			}
			if rank, ok := ctx.rankDefs[id]; ok {
				ctx.Chart.OtherAt(slot.At).JudgeLevel = &rank
			} else {
				ctx.warn(diag.StageProcess, "W_PROCESS_UNKNOWN_RANK_ID", "channel A0 references undefined #EXRANK id "+id.String())
			}
		}
	case token.ChOptionByID:
		for _, slot := range decodeSlots(tok) {
			id, ok := decodeID(slot.Raw, ctx.ChannelEncoding)
			if !ok {
				continue
			}
			ctx.Chart.OtherAt(slot.At).OptionChange = &id
			if _, ok := ctx.optionDefs[id]; !ok {
				ctx.warn(diag.StageProcess, "W_PROCESS_UNKNOWN_OPTION_ID", "channel A6 references undefined #CHANGEOPTION id "+id.String())
			}
		}
	case token.ChBGMVolume:
		for _, slot := range decodeSlots(tok) {
			v, ok := decodeHexByte(slot.Raw)
			if !ok {
				continue
			}
			ctx.Chart.OtherAt(slot.At).BGMVolume = &v
		}
	case token.ChKeyVolume:
		for _, slot := range decodeSlots(tok) {
			v, ok := decodeHexByte(slot.Raw)
			if !ok {
				continue
			}
			ctx.Chart.OtherAt(slot.At).KeyVolume = &v
		}
	}
}

func handleOthersHeader(tok token.Token, ctx *Context) {
	if id, ok := headerID(tok.Name, "EXRANK", ctx.ChannelEncoding); ok {
		n, err := strconv.Atoi(strings.TrimSpace(tok.Args))
		if err != nil {
			ctx.warn(diag.StageProcess, "W_PROCESS_BAD_EXRANK", "header #EXRANK"+id.String()+" has a non-integer value")
			return
		}
		ctx.rankDefs[id] = n
		return
	}
	if id, ok := headerID(tok.Name, "TEXT", ctx.ChannelEncoding); ok {
		ctx.textDefs[id] = tok.Args
		return
	}
	if id, ok := headerID(tok.Name, "SONG", ctx.ChannelEncoding); ok {
		ctx.textDefs[id] = tok.Args
		return
	}
	if id, ok := headerID(tok.Name, "CHANGEOPTION", ctx.ChannelEncoding); ok {
		ctx.optionDefs[id] = tok.Args
		return
	}
	if id, ok := headerID(tok.Name, "OPTION", ctx.ChannelEncoding); ok {
		ctx.optionDefs[id] = tok.Args
	}
}
