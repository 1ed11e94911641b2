package bmseval

import (
	"reflect"
	"testing"

	"github.com/nitro-chart/bmscore/internal/bmsast"
	"github.com/nitro-chart/bmscore/internal/bmslex"
	"github.com/nitro-chart/bmscore/internal/rng"
	"github.com/nitro-chart/bmscore/internal/token"
)

const nestedSwitchSource = `#SWITCH 2
#CASE 1
#RANDOM 2
#IF 1
#00115:00550000
#ELSEIF 2
#00116:00006600
#ENDIF
#ENDRANDOM
#SKIP
#CASE 2
#00113:00003300
#SKIP
#ENDSW`

func parse(t *testing.T, src string) []bmsast.Unit {
	t.Helper()
	toks, _ := bmslex.New(src).Tokenize()
	units, err := bmsast.Build(toks)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return units
}

func TestNestedRandomInSwitchSelectsBranch66(t *testing.T) {
	units := parse(t, nestedSwitchSource)
	out, _ := Eval(units, rng.NewFixed(1, 2))

	var messages []token.Token
	for _, tk := range out {
		if tk.Kind == token.KindMessage {
			messages = append(messages, tk)
		}
	}
	if len(messages) != 1 {
		t.Fatalf("expected exactly 1 message token, got %d: %+v", len(messages), messages)
	}
	if messages[0].Channel != "16" || messages[0].Payload != "00006600" {
		t.Errorf("unexpected message: %+v", messages[0])
	}
}

func TestNestedRandomInSwitchSelectsBranch33(t *testing.T) {
	units := parse(t, nestedSwitchSource)
	out, _ := Eval(units, rng.NewFixed(2))

	var messages []token.Token
	for _, tk := range out {
		if tk.Kind == token.KindMessage {
			messages = append(messages, tk)
		}
	}
	if len(messages) != 1 {
		t.Fatalf("expected exactly 1 message token, got %d: %+v", len(messages), messages)
	}
	if messages[0].Channel != "13" || messages[0].Payload != "00003300" {
		t.Errorf("unexpected message: %+v", messages[0])
	}
}

func TestDeterminismAcrossRuns(t *testing.T) {
	units := parse(t, nestedSwitchSource)
	out1, _ := Eval(units, rng.NewFixed(1, 2))
	out2, _ := Eval(parse(t, nestedSwitchSource), rng.NewFixed(1, 2))
	if !reflect.DeepEqual(out1, out2) {
		t.Error("same source + same RNG sequence must yield identical token streams")
	}
}

func TestRandomZeroSelectsNoBranch(t *testing.T) {
	src := "#RANDOM 0\n#IF 1\n#00111:0001\n#ENDIF\n#ENDRANDOM"
	units := parse(t, src)
	out, _ := Eval(units, rng.NewFixed(99))
	for _, tk := range out {
		if tk.Kind == token.KindMessage {
			t.Errorf("RANDOM 0 should select no branch, got %+v", tk)
		}
	}
}

func TestSwitchFallthroughEmitsBothCases(t *testing.T) {
	src := "#SWITCH 1\n#CASE 1\n#00111:0001\n#CASE 2\n#00111:0002\n#SKIP\n#ENDSW"
	units := parse(t, src)
	out, _ := Eval(units, rng.NewFixed(1))
	var payloads []string
	for _, tk := range out {
		if tk.Kind == token.KindMessage {
			payloads = append(payloads, tk.Payload)
		}
	}
	if !reflect.DeepEqual(payloads, []string{"0001", "0002"}) {
		t.Errorf("expected fallthrough to emit both cases in order, got %v", payloads)
	}
}
