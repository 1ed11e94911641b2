package bmslex

import (
	"testing"

	"github.com/nitro-chart/bmscore/internal/token"
)

func TestHeaderRoundTrip(t *testing.T) {
	toks, diags := New("#TITLE My Song\n#bpm 120").Tokenize()
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(toks))
	}
	if toks[0].Kind != token.KindHeader || toks[0].Name != "TITLE" || toks[0].Args != "My Song" {
		t.Errorf("unexpected token 0: %+v", toks[0])
	}
	if toks[1].String() != "#bpm 120" {
		t.Errorf("round trip failed: %q", toks[1].String())
	}
}

func TestMessageToken(t *testing.T) {
	toks, _ := New("#00115:00550000").Tokenize()
	if len(toks) != 1 {
		t.Fatalf("expected 1 token, got %d", len(toks))
	}
	tk := toks[0]
	if tk.Kind != token.KindMessage || tk.Track != 1 || tk.Channel != "15" || tk.Payload != "00550000" {
		t.Errorf("unexpected message token: %+v", tk)
	}
}

func TestControlFlowKeywords(t *testing.T) {
	src := "#RANDOM 2\n#IF 1\n#ENDIF\n#ENDRANDOM"
	toks, _ := New(src).Tokenize()
	want := []token.Kind{token.KindRandom, token.KindIf, token.KindEndIf, token.KindEndRandom}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got kind %v want %v", i, toks[i].Kind, k)
		}
	}
}

func TestBlankAndCommentLinesIgnored(t *testing.T) {
	toks, _ := New("\n\n; a plain comment\n#TITLE x").Tokenize()
	var headerCount int
	for _, tk := range toks {
		if tk.Kind == token.KindHeader {
			headerCount++
		}
	}
	if headerCount != 1 {
		t.Errorf("expected 1 header token, got %d total tokens %+v", len(toks), toks)
	}
}

func TestOddPayloadWarns(t *testing.T) {
	_, diags := New("#00111:001").Tokenize()
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
}
