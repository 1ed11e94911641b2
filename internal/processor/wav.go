package processor

import (
	"strings"

	"github.com/nitro-chart/bmscore/internal/chart"
	"github.com/nitro-chart/bmscore/internal/diag"
	"github.com/nitro-chart/bmscore/internal/notes"
	"github.com/nitro-chart/bmscore/internal/objid"
	"github.com/nitro-chart/bmscore/internal/token"
)

// headerID splits a header name like "WAV01" into its keyword prefix and
// trailing two-character object id, case-insensitively on the prefix, and
// folds the id under the legacy base-36 encoding the same way decodeID
// does, so a def and its message-slot references agree on identity.
func headerID(name, prefix string, enc token.ChannelEncoding) (objid.ID, bool) {
	if len(name) != len(prefix)+2 {
		return "", false
	}
	if !strings.EqualFold(name[:len(prefix)], prefix) {
		return "", false
	}
	id, err := objid.Parse(name[len(prefix):])
	if err != nil {
		return "", false
	}
	if enc == token.ChannelBase36 {
		id = id.Fold()
	}
	return id, true
}

// WavHandler folds #WAV/#EXWAV resource definitions and every sound-channel
// message (BGM channel 01, playable note channels 11..1Z/21..2Z) into the
// notes arena.
type WavHandler struct{}

func (WavHandler) Handle(tok token.Token, ctx *Context) {
	switch tok.Kind {
	case token.KindHeader:
		if id, ok := headerID(tok.Name, "WAV", ctx.ChannelEncoding); ok {
			ctx.defineSound(id, tok.Args)
			return
		}
		if id, ok := headerID(tok.Name, "EXWAV", ctx.ChannelEncoding); ok {
			ctx.defineSound(id, tok.Args)
			return
		}
	case token.KindMessage:
		ch := token.Channel(tok.Channel)
		if ch != token.ChBGM && !token.IsNoteChannel(tok.Channel) {
			return
		}
		for _, slot := range decodeSlots(tok) {
			id, ok := decodeID(slot.Raw, ctx.ChannelEncoding)
			if !ok {
				ctx.warn(diag.StageProcess, "W_PROCESS_BAD_WAV_SLOT", "message "+tok.Channel+" has a non-base62 payload slot")
				continue
			}
			ctx.Chart.Notes.Push(notes.WavObj{Offset: slot.At, ChannelID: tok.Channel, WavID: id})
		}
	}
}

func (c *Context) defineSound(id objid.ID, path string) {
	if existing, ok := c.Chart.Sounds[id]; ok {
		d := c.Prompter.Resolve(id.String(), existing.Path, path)
		if d.ShouldWarn() {
			c.warn(diag.StageProcess, "W_PROCESS_DUP_WAV", "duplicate #WAV definition for "+id.String())
		}
		if d.KeepsOlder() {
			return
		}
	}
	c.Chart.Sounds[id] = chart.SoundDef{Path: path}
}
