// Package bmseval walks a bmsast tree against a reproducible rng.Source and
// yields the flat token stream for one playthrough.
package bmseval

import (
	"math/big"

	"github.com/nitro-chart/bmscore/internal/bmsast"
	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/rng"
	"github.com/nitro-chart/bmscore/internal/token"
)

var (
	big0 = big.NewInt(0)
	big1 = big.NewInt(1)
)

type evaluator struct {
	src   rng.Source
	diags []diag.Diagnostic
}

// Eval flattens units into a linear token stream, resolving every
// Random/Switch block exactly once using src.
func Eval(units []bmsast.Unit, src rng.Source) ([]token.Token, []diag.Diagnostic) {
	e := &evaluator{src: src}
	var out []token.Token
	e.evalUnits(units, &out)
	return out, e.diags
}

func (e *evaluator) warn(code, msg string) {
	e.diags = append(e.diags, diag.Warn(diag.StageEval, diag.CategorySemanticWarning, code, msg, diag.Range{}))
}

func (e *evaluator) evalUnits(units []bmsast.Unit, out *[]token.Token) {
	for _, u := range units {
		switch v := u.(type) {
		case bmsast.TokenUnit:
			*out = append(*out, v.Tok)
		case *bmsast.RandomBlock:
			e.evalRandom(v, out)
		case *bmsast.SwitchBlock:
			e.evalSwitch(v, out)
		case bmsast.IfBlockUnit:
			// An IfBlock reachable without an enclosing value should not
			// occur (the builder only attaches these inside RandomBlock
			// units); defensively skip rather than panic.
		}
	}
}

// resolve draws (or reuses) the block's selector value.
func (e *evaluator) resolve(v bmsast.BlockValue) *big.Int {
	if !v.Random {
		return v.Value
	}
	max := v.Max
	if max == nil {
		max = big0
	}
	if max.Sign() <= 0 {
		return big.NewInt(0)
	}
	drawn := e.src.Generate(big1, max)
	if drawn.Cmp(big1) < 0 || drawn.Cmp(max) > 0 {
		e.warn("W_EVAL_RNG_OUT_OF_RANGE", "RNG draw fell outside 1..=max")
	}
	return drawn
}

func (e *evaluator) evalRandom(rb *bmsast.RandomBlock, out *[]token.Token) {
	value := e.resolve(rb.Value)
	for _, u := range rb.Units {
		switch v := u.(type) {
		case bmsast.IfBlockUnit:
			e.evalIfBlock(v.Block, value, out)
		case *bmsast.RandomBlock:
			e.evalRandom(v, out)
		case *bmsast.SwitchBlock:
			e.evalSwitch(v, out)
		case bmsast.TokenUnit:
			*out = append(*out, v.Tok)
		}
	}
}

func (e *evaluator) evalIfBlock(ib *bmsast.IfBlock, value *big.Int, out *[]token.Token) {
	for _, br := range ib.Branches {
		if !br.IsElse && br.Key != nil && br.Key.Cmp(value) == 0 {
			e.evalUnits(br.Body, out)
			return
		}
	}
	for _, br := range ib.Branches {
		if br.IsElse {
			e.evalUnits(br.Body, out)
			return
		}
	}
}

func (e *evaluator) evalSwitch(sb *bmsast.SwitchBlock, out *[]token.Token) {
	value := e.resolve(sb.Value)

	idx := -1
	for i, c := range sb.Cases {
		if !c.IsDef && c.Key != nil && c.Key.Cmp(value) == 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, c := range sb.Cases {
			if c.IsDef {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return
	}
	for i := idx; i < len(sb.Cases); i++ {
		e.evalUnits(sb.Cases[i].Body, out)
		if sb.Cases[i].HasSkip {
			return
		}
	}
}
