package processor

import (
	"strconv"
	"strings"

	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/token"
)

// HeaderHandler folds the chart's scalar header fields: title, artist,
// genre, difficulty, rank, total, volume, LN style, BPM, play level,
// preview and charset.
type HeaderHandler struct{}

func (HeaderHandler) Handle(tok token.Token, ctx *Context) {
	if tok.Kind != token.KindHeader {
		return
	}
	h := &ctx.Chart.Header
	switch strings.ToUpper(tok.Name) {
	case "TITLE":
		h.Title = tok.Args
	case "SUBTITLE":
		h.Subtitle = tok.Args
	case "ARTIST":
		h.Artist = tok.Args
	case "SUBARTIST":
		h.Subartist = tok.Args
	case "GENRE":
		h.Genre = tok.Args
	case "PLAYER":
		h.PlayerMode = atoiOr(ctx, tok, 0)
	case "DIFFICULTY":
		h.Difficulty = atoiOr(ctx, tok, 0)
	case "RANK":
		h.Rank = atoiOr(ctx, tok, 0)
		h.HasRank = true
	case "TOTAL":
		h.Total = decimalOr(ctx, tok, h.Total)
	case "VOLWAV":
		h.Volume = atoiOr(ctx, tok, h.Volume)
	case "LNTYPE":
		h.LnType = atoiOr(ctx, tok, h.LnType)
		h.HasLnType = true
	case "LNOBJ":
		if id, ok := decodeID(strings.TrimSpace(tok.Args), ctx.ChannelEncoding); ok {
			h.LnObj = id
			h.HasLnObj = true
		}
	case "BASE":
		if strings.TrimSpace(tok.Args) == "62" {
			ctx.ChannelEncoding = token.ChannelBase62
		} else {
			ctx.ChannelEncoding = token.ChannelBase36
		}
	case "BPM":
		h.BPM = decimalOr(ctx, tok, h.BPM)
	case "PLAYLEVEL":
		h.PlayLevel = atoiOr(ctx, tok, 0)
	case "PREVIEW":
		h.Preview = tok.Args
	case "CHARSET":
		h.Charset = tok.Args
	}
}

func atoiOr(ctx *Context, tok token.Token, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(tok.Args))
	if err != nil {
		ctx.diags = append(ctx.diags, diag.Warn(diag.StageProcess, diag.CategorySemanticWarning,
			"W_PROCESS_BAD_INT", "header #"+tok.Name+" has non-integer argument "+tok.Args, tok.Range))
		return fallback
	}
	return v
}

func decimalOr(ctx *Context, tok token.Token, fallback bmstime.Decimal) bmstime.Decimal {
	v, err := bmstime.NewFromString(strings.TrimSpace(tok.Args))
	if err != nil {
		ctx.diags = append(ctx.diags, diag.Warn(diag.StageProcess, diag.CategorySemanticWarning,
			"W_PROCESS_BAD_DECIMAL", "header #"+tok.Name+" has non-numeric argument "+tok.Args, tok.Range))
		return fallback
	}
	return v
}
