// Package charset is an optional external collaborator the core never
// requires: it always consumes decoded UTF-8, and detecting or
// transcoding a legacy Shift-JIS chart file is somebody else's job. This
// package is a thin Decoder interface plus one concrete implementation
// (golang.org/x/text/encoding/japanese) a CLI front end can use before
// handing bytes to bmslex; nothing in the core ever imports this package.
package charset

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// Decoder transcodes raw chart bytes into UTF-8 text.
type Decoder interface {
	Decode(raw []byte) (string, error)
}

type shiftJIS struct{ enc encoding.Encoding }

// ShiftJIS returns a Decoder for the Shift-JIS encoding historically used
// by Japanese-authored BMS files.
func ShiftJIS() Decoder { return shiftJIS{enc: japanese.ShiftJIS} }

func (d shiftJIS) Decode(raw []byte) (string, error) {
	out, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// UTF8 is the identity decoder for already-decoded input.
type utf8Decoder struct{}

func UTF8() Decoder { return utf8Decoder{} }

func (utf8Decoder) Decode(raw []byte) (string, error) { return string(raw), nil }
