package processor

import (
	"strconv"
	"strings"

	"github.com/nitro-chart/bmscore/internal/chart"
	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/objid"
	"github.com/nitro-chart/bmscore/internal/token"
)

// BmpHandler folds #BMP/#EXBMP/#@BGA/#BGA/#ARGB/#SWBGA resource and layer
// definitions plus their message channels into the chart's graphics track.
type BmpHandler struct{}

func (BmpHandler) Handle(tok token.Token, ctx *Context) {
	if tok.Kind == token.KindHeader {
		handleBmpHeader(tok, ctx)
		return
	}
	if tok.Kind != token.KindMessage {
		return
	}
	switch token.Channel(tok.Channel) {
	case token.ChBGABase:
		applyLayerID(tok, ctx, func(e *chart.GraphicsEvent, id objid.ID) { e.BGABase = &id })
	case token.ChBGAOverlay:
		applyLayerID(tok, ctx, func(e *chart.GraphicsEvent, id objid.ID) { e.BGAOverlay = &id })
	case token.ChBGAOverlay2:
		applyLayerID(tok, ctx, func(e *chart.GraphicsEvent, id objid.ID) { e.BGAOverlay2 = &id })
	case token.ChBGAPoor:
		applyLayerID(tok, ctx, func(e *chart.GraphicsEvent, id objid.ID) { e.BGAPoor = &id })
	case token.ChOpacityBase:
		applyOpacity(tok, ctx, func(e *chart.GraphicsEvent, v uint8) { e.OpacityBase = &v })
	case token.ChOpacityOverlay:
		applyOpacity(tok, ctx, func(e *chart.GraphicsEvent, v uint8) { e.OpacityOverlay = &v })
	case token.ChOpacityOver2:
		applyOpacity(tok, ctx, func(e *chart.GraphicsEvent, v uint8) { e.OpacityOverlay2 = &v })
	case token.ChOpacityPoor:
		applyOpacity(tok, ctx, func(e *chart.GraphicsEvent, v uint8) { e.OpacityPoor = &v })
	case token.ChARGBBase:
		applyLayerID(tok, ctx, func(e *chart.GraphicsEvent, id objid.ID) { e.ArgbBase = &id })
	case token.ChARGBOverlay:
		applyLayerID(tok, ctx, func(e *chart.GraphicsEvent, id objid.ID) { e.ArgbOverlay = &id })
	case token.ChARGBOverlay2:
		applyLayerID(tok, ctx, func(e *chart.GraphicsEvent, id objid.ID) { e.ArgbOverlay2 = &id })
	case token.ChARGBPoor:
		applyLayerID(tok, ctx, func(e *chart.GraphicsEvent, id objid.ID) { e.ArgbPoor = &id })
	case token.ChBGAKeybound:
		applyLayerID(tok, ctx, func(e *chart.GraphicsEvent, id objid.ID) { e.Keybound = &id })
	case token.ChVideoSeek:
		for _, slot := range decodeSlots(tok) {
			path := slot.Raw
			ctx.Chart.GraphicsAt(slot.At).VideoSeek = &path
		}
	}
}

func applyLayerID(tok token.Token, ctx *Context, apply func(*chart.GraphicsEvent, objid.ID)) {
	for _, slot := range decodeSlots(tok) {
		id, ok := decodeID(slot.Raw, ctx.ChannelEncoding)
		if !ok {
			ctx.warn(diag.StageProcess, "W_PROCESS_BAD_ID_SLOT", "message "+tok.Channel+" has a non-base62 payload slot")
			continue
		}
		apply(ctx.Chart.GraphicsAt(slot.At), id)
	}
}

func applyOpacity(tok token.Token, ctx *Context, apply func(*chart.GraphicsEvent, uint8)) {
	for _, slot := range decodeSlots(tok) {
		v, ok := decodeHexByte(slot.Raw)
		if !ok {
			ctx.warn(diag.StageProcess, "W_PROCESS_BAD_OPACITY_SLOT", "message "+tok.Channel+" has a non-hex payload slot")
			continue
		}
		apply(ctx.Chart.GraphicsAt(slot.At), v)
	}
}

func handleBmpHeader(tok token.Token, ctx *Context) {
	if id, ok := headerID(tok.Name, "BMP", ctx.ChannelEncoding); ok {
		defineGraphic(ctx, id, tok.Args)
		return
	}
	if id, ok := headerID(tok.Name, "EXBMP", ctx.ChannelEncoding); ok {
		defineGraphic(ctx, id, tok.Args)
		return
	}
	if id, ok := headerID(tok.Name, "ARGB", ctx.ChannelEncoding); ok {
		if c, ok := parseARGB(tok.Args); ok {
			ctx.ARGBDefs(id, c)
		} else {
			ctx.warn(diag.StageProcess, "W_PROCESS_BAD_ARGB", "header #ARGB"+id.String()+" is not four comma-separated bytes")
		}
		return
	}
	bgaName := strings.TrimPrefix(tok.Name, "@")
	if _, ok := headerID(bgaName, "BGA", ctx.ChannelEncoding); ok {
		handleBGACrop(tok, ctx)
		return
	}
	if id, ok := headerID(tok.Name, "SWBGA", ctx.ChannelEncoding); ok {
		if def, ok := parseSwBga(tok.Args, ctx.ChannelEncoding); ok {
			if existing, dup := ctx.Chart.SwBga[id]; dup {
				d := ctx.MinorPrompter.Resolve(id.String(), existing.Pattern, def.Pattern)
				if d.ShouldWarn() {
					ctx.warn(diag.StageProcess, "W_PROCESS_DUP_SWBGA", "duplicate #SWBGA definition for "+id.String())
				}
				if d.KeepsOlder() {
					return
				}
			}
			ctx.Chart.SwBga[id] = def
		} else {
			ctx.warn(diag.StageProcess, "W_PROCESS_BAD_SWBGA", "header #SWBGA"+id.String()+" is malformed")
		}
	}
}

func defineGraphic(ctx *Context, id objid.ID, path string) {
	if existing, ok := ctx.Chart.Graphics[id]; ok {
		d := ctx.Prompter.Resolve(id.String(), existing.Path, path)
		if d.ShouldWarn() {
			ctx.warn(diag.StageProcess, "W_PROCESS_DUP_BMP", "duplicate #BMP definition for "+id.String())
		}
		if d.KeepsOlder() {
			return
		}
	}
	ctx.Chart.Graphics[id] = chart.GraphicDef{Path: path}
}

func (c *Context) ARGBDefs(id objid.ID, v chart.ARGBColor) {
	if existing, ok := c.Chart.ARGBDefs[id]; ok {
		d := c.MinorPrompter.Resolve(id.String(), argbString(existing), argbString(v))
		if d.ShouldWarn() {
			c.warn(diag.StageProcess, "W_PROCESS_DUP_ARGB", "duplicate #ARGB definition for "+id.String())
		}
		if d.KeepsOlder() {
			return
		}
	}
	c.Chart.ARGBDefs[id] = v
}

func argbString(c chart.ARGBColor) string {
	return strconv.Itoa(int(c.A)) + "," + strconv.Itoa(int(c.R)) + "," + strconv.Itoa(int(c.G)) + "," + strconv.Itoa(int(c.B))
}

func parseARGB(args string) (chart.ARGBColor, bool) {
	parts := strings.Split(args, ",")
	if len(parts) != 4 {
		return chart.ARGBColor{}, false
	}
	vals := make([]uint8, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 255 {
			return chart.ARGBColor{}, false
		}
		vals[i] = uint8(n)
	}
	return chart.ARGBColor{A: vals[0], R: vals[1], G: vals[2], B: vals[3]}, true
}

// handleBGACrop folds "#BGA<id> <srcbmp> <sx> <sy> <ex> <ey> <dx> <dy>" and
// its legacy "#@BGA" spelling, both using the same eight-field layout.
func handleBGACrop(tok token.Token, ctx *Context) {
	id, ok := headerID(strings.TrimPrefix(tok.Name, "@"), "BGA", ctx.ChannelEncoding)
	if !ok {
		return
	}
	fields := strings.Fields(tok.Args)
	if len(fields) != 7 {
		ctx.warn(diag.StageProcess, "W_PROCESS_BAD_BGA_DEF", "header #BGA"+id.String()+" does not have 7 fields")
		return
	}
	src, ok := decodeID(fields[0], ctx.ChannelEncoding)
	if !ok {
		ctx.warn(diag.StageProcess, "W_PROCESS_BAD_BGA_DEF", "header #BGA"+id.String()+" source bmp id is invalid")
		return
	}
	ints := make([]int, 6)
	for i, f := range fields[1:] {
		n, err := strconv.Atoi(f)
		if err != nil {
			ctx.warn(diag.StageProcess, "W_PROCESS_BAD_BGA_DEF", "header #BGA"+id.String()+" has a non-integer coordinate")
			return
		}
		ints[i] = n
	}
	ctx.Chart.BGADefs[id] = chart.BGACropDef{
		SourceBMP: src,
		SrcX:      ints[0], SrcY: ints[1], SrcW: ints[2] - ints[0], SrcH: ints[3] - ints[1],
		DstX: ints[4], DstY: ints[5],
	}
}

func parseSwBga(args string, enc token.ChannelEncoding) (chart.SwBgaDef, bool) {
	fields := strings.SplitN(args, ":", 5)
	if len(fields) != 5 {
		return chart.SwBgaDef{}, false
	}
	frameRate, err1 := strconv.Atoi(strings.TrimSpace(fields[0]))
	totalTime, err2 := strconv.Atoi(strings.TrimSpace(fields[1]))
	line, err3 := strconv.Atoi(strings.TrimSpace(fields[2]))
	loop, err4 := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return chart.SwBgaDef{}, false
	}
	pattern := fields[4]
	var frames []objid.ID
	for i := 0; i+1 < len(pattern); i += 2 {
		if id, ok := decodeID(pattern[i:i+2], enc); ok {
			frames = append(frames, id)
		}
	}
	return chart.SwBgaDef{
		FrameRate:  frameRate,
		TotalTime:  totalTime,
		Line:       line,
		LoopMode:   loop != 0,
		ArgbFrames: frames,
		Pattern:    pattern,
	}, true
}
