package bmsast

import (
	"math/big"

	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/token"
)

// maxNestingDepth bounds recursion so adversarial input gets an ASTError
// diagnostic instead of exhausting the Go call stack.
const maxNestingDepth = 512

type builder struct {
	toks  []token.Token
	pos   int
	depth int
	diags []diag.Diagnostic
}

// Build parses the whole token stream into a top-level unit list. Unlike a
// block body, the top level has no terminator: it runs to EOF and any
// orphan terminator token found there is a structural error.
func Build(toks []token.Token) ([]Unit, error) {
	b := &builder{toks: toks}
	units := b.parseUnits(noTerminator)
	if b.pos < len(b.toks) {
		t := b.toks[b.pos]
		b.err("E_AST_ORPHAN_TERMINATOR", orphanMessage(t.Kind), t.Range)
	}
	return units, diag.AsError(b.diags)
}

type terminatorSet map[token.Kind]bool

var noTerminator = terminatorSet{}

func (b *builder) err(code, msg string, rng diag.Range) {
	b.diags = append(b.diags, diag.Err(diag.StageAST, diag.CategoryASTError, code, msg, rng))
}

func (b *builder) peek() (token.Token, bool) {
	if b.pos >= len(b.toks) {
		return token.Token{}, false
	}
	return b.toks[b.pos], true
}

func (b *builder) next() (token.Token, bool) {
	t, ok := b.peek()
	if ok {
		b.pos++
	}
	return t, ok
}

// parseUnits consumes units until it sees a token whose Kind is in stop (not
// consumed) or runs out of tokens. Random/Switch openers recurse.
func (b *builder) parseUnits(stop terminatorSet) []Unit {
	var units []Unit
	for {
		t, ok := b.peek()
		if !ok || stop[t.Kind] {
			return units
		}
		switch t.Kind {
		case token.KindRandom, token.KindSetRandom:
			units = append(units, b.parseRandomBlock())
		case token.KindSwitch, token.KindSetSwitch:
			units = append(units, b.parseSwitchBlock())
		case token.KindIf, token.KindElseIf, token.KindElse, token.KindEndIf, token.KindEndRandom,
			token.KindCase, token.KindDef, token.KindSkip, token.KindEndSwitch:
			b.next()
			b.err("E_AST_ORPHAN_TERMINATOR", orphanMessage(t.Kind), t.Range)
		default:
			b.next()
			units = append(units, TokenUnit{Tok: t})
		}
	}
}

func (b *builder) parseBigArg(args string) *big.Int {
	n := new(big.Int)
	if _, ok := n.SetString(args, 10); !ok {
		return big.NewInt(0)
	}
	return n
}

func (b *builder) parseRandomBlock() Unit {
	open, _ := b.next()
	var val BlockValue
	if open.Kind == token.KindSetRandom {
		val = BlockValue{Random: false, Value: b.parseBigArg(open.Args)}
	} else {
		val = BlockValue{Random: true, Max: b.parseBigArg(open.Args)}
	}

	b.depth++
	defer func() { b.depth-- }()
	if b.depth > maxNestingDepth {
		b.err("E_AST_NESTING_TOO_DEEP", "random/switch nesting exceeds limit", open.Range)
		return &RandomBlock{Value: val}
	}

	stop := terminatorSet{token.KindEndRandom: true, token.KindIf: false}
	// #IF is handled specially inside the loop below so multiple IfBlocks can
	// appear in sequence inside one #RANDOM.
	var units []Unit
	for {
		t, ok := b.peek()
		if !ok {
			b.err("E_AST_UNTERMINATED", "RANDOM without matching ENDRANDOM", open.Range)
			break
		}
		if t.Kind == token.KindEndRandom {
			b.next()
			break
		}
		if t.Kind == token.KindIf {
			units = append(units, IfBlockUnit{Block: b.parseIfBlock()})
			continue
		}
		if t.Kind == token.KindSwitch || t.Kind == token.KindSetSwitch {
			units = append(units, b.parseSwitchBlock())
			continue
		}
		if t.Kind == token.KindRandom || t.Kind == token.KindSetRandom {
			units = append(units, b.parseRandomBlock())
			continue
		}
		if stop[t.Kind] {
			break
		}
		b.next()
		switch t.Kind {
		case token.KindElseIf, token.KindElse, token.KindEndIf,
			token.KindCase, token.KindDef, token.KindSkip, token.KindEndSwitch:
			b.err("E_AST_ORPHAN_TERMINATOR", orphanMessage(t.Kind), t.Range)
		default:
			units = append(units, TokenUnit{Tok: t})
		}
	}
	return &RandomBlock{Value: val, Units: units}
}

func (b *builder) parseIfBlock() *IfBlock {
	block := &IfBlock{}
	for {
		t, ok := b.peek()
		if !ok {
			b.err("E_AST_UNTERMINATED", "IF without matching ENDIF", t.Range)
			return block
		}
		switch t.Kind {
		case token.KindIf, token.KindElseIf:
			open, _ := b.next()
			key := b.parseBigArg(open.Args)
			body := b.parseUnits(terminatorSet{
				token.KindElseIf: true, token.KindElse: true, token.KindEndIf: true,
			})
			block.Branches = append(block.Branches, IfBranch{Key: key, Body: body})
		case token.KindElse:
			b.next()
			if hasElse(block) {
				b.err("E_AST_MULTIPLE_ELSE", "multiple ELSE in one IF block", t.Range)
			}
			body := b.parseUnits(terminatorSet{token.KindElseIf: true, token.KindElse: true, token.KindEndIf: true})
			block.Branches = append(block.Branches, IfBranch{IsElse: true, Body: body})
		case token.KindEndIf:
			b.next()
			return block
		default:
			// Shouldn't happen: parseUnits absorbed everything else.
			b.next()
		}
	}
}

func hasElse(b *IfBlock) bool {
	for _, br := range b.Branches {
		if br.IsElse {
			return true
		}
	}
	return false
}

func (b *builder) parseSwitchBlock() Unit {
	open, _ := b.next()
	var val BlockValue
	if open.Kind == token.KindSetSwitch {
		val = BlockValue{Random: false, Value: b.parseBigArg(open.Args)}
	} else {
		val = BlockValue{Random: true, Max: b.parseBigArg(open.Args)}
	}

	b.depth++
	defer func() { b.depth-- }()
	if b.depth > maxNestingDepth {
		b.err("E_AST_NESTING_TOO_DEEP", "random/switch nesting exceeds limit", open.Range)
		return &SwitchBlock{Value: val}
	}

	sw := &SwitchBlock{Value: val}
	for {
		t, ok := b.peek()
		if !ok {
			b.err("E_AST_UNTERMINATED", "SWITCH without matching ENDSW", open.Range)
			return sw
		}
		switch t.Kind {
		case token.KindCase, token.KindDef:
			open, _ := b.next()
			cb := &CaseBranch{IsDef: open.Kind == token.KindDef}
			if !cb.IsDef {
				cb.Key = b.parseBigArg(open.Args)
			}
			cb.Body, cb.HasSkip = b.parseCaseBody()
			sw.Cases = append(sw.Cases, cb)
		case token.KindEndSwitch:
			b.next()
			return sw
		default:
			b.next()
			b.err("E_AST_ORPHAN_TERMINATOR", orphanMessage(t.Kind), t.Range)
		}
	}
}

// parseCaseBody consumes units until SKIP, CASE, DEF or ENDSW. It returns
// whether the body ended in an explicit SKIP (consumed) as opposed to
// falling through into the next CASE/DEF/ENDSW (not consumed).
func (b *builder) parseCaseBody() ([]Unit, bool) {
	body := b.parseUnits(terminatorSet{
		token.KindSkip: true, token.KindCase: true, token.KindDef: true, token.KindEndSwitch: true,
	})
	if t, ok := b.peek(); ok && t.Kind == token.KindSkip {
		b.next()
		return body, true
	}
	return body, false
}

func orphanMessage(k token.Kind) string {
	switch k {
	case token.KindElseIf:
		return "ELSEIF without IF"
	case token.KindElse:
		return "ELSE without IF or ELSEIF"
	case token.KindEndIf:
		return "ENDIF without open IF"
	case token.KindEndRandom:
		return "ENDRANDOM without RANDOM"
	case token.KindCase:
		return "CASE outside SWITCH"
	case token.KindDef:
		return "DEF outside SWITCH"
	case token.KindSkip:
		return "SKIP outside SWITCH"
	case token.KindEndSwitch:
		return "ENDSW without SWITCH"
	default:
		return "unexpected control token"
	}
}
