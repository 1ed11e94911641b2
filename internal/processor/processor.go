// Package processor folds a linear BMS token stream into a chart.Chart, one
// independent per-family handler at a time, fanned out over the same token
// slice.
package processor

import (
	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/chart"
	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/objid"
	"github.com/nitro-chart/bmscore/internal/prompt"
	"github.com/nitro-chart/bmscore/internal/token"
)

// Context is the mutable state a single processing pass shares across
// handlers and tokens.
type Context struct {
	Chart           *chart.Chart
	Prompter        prompt.Prompter
	MinorPrompter   prompt.Prompter // for #SWBGA/#ARGB duplicates; defaults to AlwaysWarn like Prompter
	ChannelEncoding token.ChannelEncoding
	diags           []diag.Diagnostic

	// Extended (#BPMxx/#STOPxx/#SCROLLxx/#SPEEDxx) value tables, resolved by
	// id when channels 08/09/SC/SP messages reference them.
	bpmDefs    map[objid.ID]bmstime.Decimal
	stopDefs   map[objid.ID]bmstime.Decimal
	scrollDefs map[objid.ID]bmstime.Decimal
	speedDefs  map[objid.ID]bmstime.Decimal

	// #TEXT/#SONGxx, #EXRANKxx and #CHANGEOPTIONxx/#OPTIONxx tables,
	// resolved by id when channels 99/A0/A6 messages reference them.
	textDefs   map[objid.ID]string
	rankDefs   map[objid.ID]int
	optionDefs map[objid.ID]string
}

func (c *Context) warn(stage diag.Stage, code, msg string) {
	c.diags = append(c.diags, diag.Warn(stage, diag.CategorySemanticWarning, code, msg, diag.Range{}))
}

// Handler is one processor: it decides for itself which tokens it cares
// about and ignores the rest.
type Handler interface {
	Handle(tok token.Token, ctx *Context)
}

// DefaultHandlers returns the standard Bmp/Wav/Arrangers/Header/Others
// fan-out.
func DefaultHandlers() []Handler {
	return []Handler{
		HeaderHandler{},
		WavHandler{},
		ArrangerHandler{},
		BmpHandler{},
		OthersHandler{},
	}
}

// Options configures a processing Pass, following an
// options-struct-with-defaults pattern (corelx.CompileOptions).
type Options struct {
	Prompter      prompt.Prompter
	MinorPrompter prompt.Prompter
	Handlers      []Handler
}

func defaultOptions() Options {
	return Options{
		Prompter:      prompt.AlwaysWarn(),
		MinorPrompter: prompt.AlwaysWarn(),
		Handlers:      DefaultHandlers(),
	}
}

// Process runs every handler over the full token slice in sequence,
// folding the result into a fresh chart.Chart.
func Process(tokens []token.Token, opts *Options) (*chart.Chart, []diag.Diagnostic) {
	cfg := defaultOptions()
	if opts != nil {
		if opts.Prompter != nil {
			cfg.Prompter = opts.Prompter
		}
		if opts.MinorPrompter != nil {
			cfg.MinorPrompter = opts.MinorPrompter
		}
		if opts.Handlers != nil {
			cfg.Handlers = opts.Handlers
		}
	}

	ctx := &Context{
		Chart:         chart.New(),
		Prompter:      cfg.Prompter,
		MinorPrompter: cfg.MinorPrompter,
		bpmDefs:       map[objid.ID]bmstime.Decimal{},
		stopDefs:      map[objid.ID]bmstime.Decimal{},
		scrollDefs:    map[objid.ID]bmstime.Decimal{},
		speedDefs:     map[objid.ID]bmstime.Decimal{},
		textDefs:      map[objid.ID]string{},
		rankDefs:      map[objid.ID]int{},
		optionDefs:    map[objid.ID]string{},
	}
	for _, tok := range tokens {
		for _, h := range cfg.Handlers {
			h.Handle(tok, ctx)
		}
	}
	return ctx.Chart, ctx.diags
}
