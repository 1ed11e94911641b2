// Package token defines the typed lexical tokens produced by the BMS lexer:
// headers, control-flow headers, measure messages, and a catch-all
// "not a command" token for everything else.
package token

import "github.com/nitro-chart/bmscore/internal/diag"

type Kind int

const (
	KindNotACommand Kind = iota
	KindHeader
	KindMessage

	KindRandom
	KindSetRandom
	KindIf
	KindElseIf
	KindElse
	KindEndIf
	KindEndRandom
	KindSwitch
	KindSetSwitch
	KindCase
	KindDef
	KindSkip
	KindEndSwitch
)

func (k Kind) IsControlFlow() bool {
	switch k {
	case KindRandom, KindSetRandom, KindIf, KindElseIf, KindElse, KindEndIf, KindEndRandom,
		KindSwitch, KindSetSwitch, KindCase, KindDef, KindSkip, KindEndSwitch:
		return true
	}
	return false
}

// ChannelEncoding distinguishes the legacy base-36 object-id numbering some
// very old charts use from the modern base-62 numbering. A chart is
// base-36 (case-insensitive ids) unless it declares "#BASE 62", matching
// the historical convention.
type ChannelEncoding int

const (
	ChannelBase36 ChannelEncoding = iota
	ChannelBase62
)

// Token is a single lexical unit with its source range. Name carries the
// original-case header name ("BPM", "WAV01", ...) for headers and messages,
// and the upper-cased keyword ("RANDOM", "IF", ...) for control-flow
// directives; Args is the
// trimmed remainder of the line for headers and control-flow directives.
// Message tokens additionally populate Track, Channel and Payload.
type Token struct {
	Kind Kind
	Name string
	Args string

	Track   int
	Channel string
	Payload string

	Text  string
	Range diag.Range
}

func (t Token) String() string {
	switch t.Kind {
	case KindMessage:
		return "#" + paddedTrack(t.Track) + t.Channel + ":" + t.Payload
	case KindNotACommand:
		return t.Text
	default:
		if t.Args == "" {
			return "#" + t.Name
		}
		return "#" + t.Name + " " + t.Args
	}
}

func paddedTrack(track int) string {
	digits := [3]byte{'0', '0', '0'}
	for i := 2; i >= 0 && track > 0; i-- {
		digits[i] = byte('0' + track%10)
		track /= 10
	}
	return string(digits[:])
}
