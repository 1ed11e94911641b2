// Command chartplay loads a BMS or BMSON chart, precomputes its playback
// index, and runs the integrator forward over a fixed time step, printing
// every triggered event as it would be dispatched to a renderer.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nitro-chart/bmscore/internal/bmsast"
	"github.com/nitro-chart/bmscore/internal/bmseval"
	"github.com/nitro-chart/bmscore/internal/bmslex"
	"github.com/nitro-chart/bmscore/internal/bmson"
	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/chart"
	"github.com/nitro-chart/bmscore/internal/chartevent"
	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/keylayout"
	"github.com/nitro-chart/bmscore/internal/nlog"
	"github.com/nitro-chart/bmscore/internal/playback"
	"github.com/nitro-chart/bmscore/internal/precompute"
	"github.com/nitro-chart/bmscore/internal/processor"
	"github.com/nitro-chart/bmscore/internal/rng"
)

func main() {
	chartPath := flag.String("chart", "", "Path to a .bms/.bme/.bml or .bmson chart file")
	durationSeconds := flag.Float64("duration", 30, "Simulated seconds of playback to run")
	stepSeconds := flag.Float64("step", 0.25, "Simulated seconds between poll ticks")
	keys := flag.String("keys", "7k", "Key layout: 7k, 14k or 9k")
	seed := flag.Int64("seed", 0, "RNG seed for #RANDOM/#SWITCH evaluation")
	flag.Parse()

	if *chartPath == "" {
		fmt.Println("Usage: chartplay -chart <file> [-duration 30] [-step 0.25] [-keys 7k]")
		os.Exit(1)
	}

	logger := nlog.New(10000)
	logger.SetMinLevel(nlog.LevelInfo)
	defer logger.Shutdown()

	layout, err := resolveLayout(*keys)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*chartPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading chart: %v\n", err)
		os.Exit(1)
	}

	c, diags, err := loadChart(*chartPath, raw, rng.NewLegacyLCG(*seed))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing chart: %v\n", err)
		os.Exit(1)
	}
	reportDiagnostics(logger, diags)

	idx, precomputeDiags := precompute.Build(c, layout)
	reportDiagnostics(logger, precomputeDiags)

	fmt.Printf("%s - %s (%s)\n", c.Header.Title, c.Header.Artist, *chartPath)
	fmt.Printf("%d events, %d flow events, initial BPM %s\n", len(idx.AllEvents), len(idx.FlowEvents), idx.InitialBPM.String())

	core := playback.New(idx)
	core.StartPlay(0)

	step := bmstime.SpanFromSeconds(*stepSeconds)
	totalNanos := bmstime.SpanFromSeconds(*durationSeconds).Nanoseconds()
	now := bmstime.TimeStamp(0)
	for int64(now) < totalNanos {
		now = now.Add(step)
		for _, e := range core.Update(now) {
			fmt.Printf("%8.3fs  %s\n", float64(now)/1e9, describe(e))
		}
	}
}

func resolveLayout(name string) (keylayout.Dictionary, error) {
	switch strings.ToLower(name) {
	case "7k":
		return keylayout.Beat7K{}, nil
	case "14k":
		return keylayout.Beat14K{}, nil
	case "9k":
		return keylayout.PopN{}, nil
	default:
		return nil, fmt.Errorf("unknown key layout %q", name)
	}
}

func loadChart(path string, raw []byte, rngSource rng.Source) (*chart.Chart, []diag.Diagnostic, error) {
	if strings.EqualFold(filepath.Ext(path), ".bmson") {
		c, diags := bmson.Ingest(raw)
		if c == nil {
			return nil, diags, diag.AsError(diags)
		}
		return c, diags, nil
	}

	toks, lexDiags := bmslex.New(string(raw)).Tokenize()
	units, err := bmsast.Build(toks)
	if err != nil {
		return nil, lexDiags, err
	}
	flat, evalDiags := bmseval.Eval(units, rngSource)
	c, processDiags := processor.Process(flat, nil)

	all := append(append(lexDiags, evalDiags...), processDiags...)
	return c, all, nil
}

func reportDiagnostics(logger *nlog.Logger, diags []diag.Diagnostic) {
	for _, d := range diags {
		level := nlog.LevelWarn
		if d.Severity == diag.SeverityError {
			level = nlog.LevelError
		}
		logger.Log(nlog.ComponentCLI, level, d.Error(), nil)
	}
}

func describe(e chartevent.PlayheadEvent) string {
	switch ev := e.Event.(type) {
	case chartevent.Note:
		return fmt.Sprintf("note  side=%d key=%d wav=%s", ev.Side, ev.Key, ev.WavID)
	case chartevent.Bgm:
		return fmt.Sprintf("bgm   wav=%s", ev.WavID)
	case chartevent.BarLine:
		return "barline"
	case chartevent.BpmChange:
		return fmt.Sprintf("bpm   -> %s", ev.BPM.String())
	case chartevent.Stop:
		return fmt.Sprintf("stop  %s beats", ev.DurationInBeats.String())
	default:
		return fmt.Sprintf("%T", ev)
	}
}
