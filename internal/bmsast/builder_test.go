package bmsast

import (
	"testing"

	"github.com/nitro-chart/bmscore/internal/bmslex"
	"github.com/nitro-chart/bmscore/internal/diag"
)

func TestOrphanElseProducesStructuralError(t *testing.T) {
	toks, _ := bmslex.New("#ELSE").Tokenize()
	_, err := Build(toks)
	if err == nil {
		t.Fatal("expected an AST error for orphan ELSE")
	}
	list, ok := err.(*diag.List)
	if !ok || len(list.Diagnostics) == 0 {
		t.Fatalf("expected a *diag.List, got %T", err)
	}
	d := list.Diagnostics[0]
	if d.Message != "ELSE without IF or ELSEIF" {
		t.Fatalf("message = %q, want %q", d.Message, "ELSE without IF or ELSEIF")
	}
	if d.Range.Line != 1 {
		t.Fatalf("line = %d, want 1", d.Range.Line)
	}
}

func TestOrphanEndRandom(t *testing.T) {
	toks, _ := bmslex.New("#ENDRANDOM").Tokenize()
	if _, err := Build(toks); err == nil {
		t.Fatal("expected an AST error for orphan ENDRANDOM")
	}
}

func TestWellFormedRandomIfBuilds(t *testing.T) {
	src := "#RANDOM 2\n#IF 1\n#00111:0001\n#ELSEIF 2\n#00111:0002\n#ENDIF\n#ENDRANDOM"
	toks, _ := bmslex.New(src).Tokenize()
	units, err := Build(toks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 top-level unit, got %d", len(units))
	}
	rb, ok := units[0].(*RandomBlock)
	if !ok {
		t.Fatalf("expected *RandomBlock, got %T", units[0])
	}
	if !rb.Value.Random || rb.Value.Max.Int64() != 2 {
		t.Errorf("unexpected block value: %+v", rb.Value)
	}
	if len(rb.Units) != 1 {
		t.Fatalf("expected 1 unit (the IfBlock) inside RANDOM, got %d", len(rb.Units))
	}
	ifUnit, ok := rb.Units[0].(IfBlockUnit)
	if !ok {
		t.Fatalf("expected IfBlockUnit, got %T", rb.Units[0])
	}
	if len(ifUnit.Block.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(ifUnit.Block.Branches))
	}
}

func TestSwitchFallthroughStructure(t *testing.T) {
	src := "#SWITCH 2\n#CASE 1\n#00111:0001\n#CASE 2\n#00111:0002\n#SKIP\n#ENDSW"
	toks, _ := bmslex.New(src).Tokenize()
	units, err := Build(toks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sw := units[0].(*SwitchBlock)
	if len(sw.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(sw.Cases))
	}
	if sw.Cases[0].HasSkip {
		t.Error("case 1 has no explicit SKIP, should fall through")
	}
	if !sw.Cases[1].HasSkip {
		t.Error("case 2 has explicit SKIP")
	}
}
