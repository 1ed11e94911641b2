package chart

import (
	"fmt"

	"github.com/nitro-chart/bmscore/internal/diag"
)

// KeyLayoutChecker is the minimal surface CheckValidity needs from a
// keylayout.Dictionary, kept here to avoid an import cycle between chart
// and keylayout (which itself may want to read chart types later).
type KeyLayoutChecker interface {
	// Resolve reports whether ch is mapped by the dictionary.
	Resolve(ch string) bool
}

// CheckValidity is an on-demand post-parse pass: it never runs automatically
// during ingestion, and it only ever produces ValidityWarning diagnostics,
// never errors.
func CheckValidity(c *Chart, layout KeyLayoutChecker) []diag.Diagnostic {
	var diags []diag.Diagnostic
	warn := func(code, msg string) {
		diags = append(diags, diag.Warn(diag.StageValidity, diag.CategoryValidityWarning, code, msg, diag.Range{}))
	}

	usedWav := map[string]bool{}
	usedBmp := map[string]bool{}
	for _, o := range c.Notes.InsertionOrder() {
		usedWav[string(o.WavID)] = true
		if layout != nil && !layout.Resolve(o.ChannelID) {
			warn("W_VALID_ORPHAN_KEY_LANE", fmt.Sprintf("channel %s has no key-layout mapping", o.ChannelID))
		}
	}
	for _, e := range c.GraphicsTrack {
		if e.BGABase != nil {
			usedBmp[string(*e.BGABase)] = true
		}
		if e.BGAOverlay != nil {
			usedBmp[string(*e.BGAOverlay)] = true
		}
		if e.BGAOverlay2 != nil {
			usedBmp[string(*e.BGAOverlay2)] = true
		}
		if e.BGAPoor != nil {
			usedBmp[string(*e.BGAPoor)] = true
		}
	}

	for id := range c.Sounds {
		if !usedWav[string(id)] {
			warn("W_VALID_UNUSED_WAV", fmt.Sprintf("#WAV%s is defined but never referenced", id))
		}
	}
	for id := range c.Graphics {
		if !usedBmp[string(id)] {
			warn("W_VALID_UNUSED_BMP", fmt.Sprintf("#BMP%s is defined but never referenced", id))
		}
	}

	for t, arr := range c.Arrangers {
		if arr.BPM != nil && !arr.BPM.IsPositive() {
			warn("W_VALID_NONPOSITIVE_BPM", fmt.Sprintf("BPM change at %v is zero or negative", t))
		}
	}
	if !c.Header.BPM.IsPositive() {
		warn("W_VALID_NONPOSITIVE_BPM", "chart header BPM is zero or negative")
	}

	for t, o := range c.Others {
		if o.Text != nil && *o.Text == "" {
			warn("W_VALID_EMPTY_TEXT", fmt.Sprintf("empty text event at %v", t))
		}
	}

	if c.Header.HasLnObj && c.Header.HasLnType {
		warn("W_VALID_LNOBJ_LNTYPE_BOTH", "both #LNOBJ and #LNTYPE are present; interplay is undefined")
	}

	return diags
}
