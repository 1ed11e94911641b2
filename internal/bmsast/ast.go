// Package bmsast groups a linear BMS token stream into a control-flow tree
// of nested Random/Switch blocks.
package bmsast

import (
	"math/big"

	"github.com/nitro-chart/bmscore/internal/token"
)

// Unit is either a raw non-control token or a nested control-flow block.
type Unit interface{ isUnit() }

// TokenUnit wraps a single non-control-flow token (header, message, or
// not-a-command).
type TokenUnit struct {
	Tok token.Token
}

func (TokenUnit) isUnit() {}

// BlockValue is either a uniform-random draw in 1..=Max, or a fixed Value
// supplied by #SETRANDOM/#SETSWITCH.
type BlockValue struct {
	Random bool
	Max    *big.Int // meaningful when Random
	Value  *big.Int // meaningful when !Random
}

// IfBranch is one arm of a chained #IF/#ELSEIF/#ELSE. Else is keyed by
// convention at Key == nil && IsElse == true.
type IfBranch struct {
	Key    *big.Int
	IsElse bool
	Body   []Unit
}

// IfBlock is a single #IF ... #ENDIF chain: the #IF plus any #ELSEIF/#ELSE
// arms up to the terminating #ENDIF.
type IfBlock struct {
	Branches []IfBranch
}

// RandomBlock is #RANDOM/#SETRANDOM ... #ENDRANDOM. A random block may
// contain more than one IfBlock in sequence (each opened by its own #IF),
// plus bare units outside any #IF, matching real-world charts.
type RandomBlock struct {
	Value    BlockValue
	Units    []Unit // units and IfBlocks interleaved in source order
}

func (*RandomBlock) isUnit() {}

// CaseBranch is one #CASE/#DEF arm of a #SWITCH. HasSkip records whether the
// arm ended in an explicit #SKIP (vs. falling through to the next case).
type CaseBranch struct {
	Key    *big.Int
	IsDef  bool
	Body   []Unit
	HasSkip bool
}

// SwitchBlock is #SWITCH/#SETSWITCH ... #ENDSW.
type SwitchBlock struct {
	Value BlockValue
	Cases []*CaseBranch
}

func (*SwitchBlock) isUnit() {}

// IfBlockUnit lets an IfBlock sit directly in a RandomBlock's unit list.
type IfBlockUnit struct{ Block *IfBlock }

func (IfBlockUnit) isUnit() {}
