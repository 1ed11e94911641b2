package processor

import (
	"strconv"

	"github.com/nitro-chart/bmscore/internal/bmstime"
	"github.com/nitro-chart/bmscore/internal/objid"
	"github.com/nitro-chart/bmscore/internal/token"
)

// Slot is one decoded two-character payload pair at its ObjTime.
type Slot struct {
	At  bmstime.ObjTime
	Raw string
}

// decodeSlots divides a message payload into len(payload)/2 equal slots,
// skipping "00" (empty). Odd-length payloads are already
// truncated by the lexer.
func decodeSlots(tok token.Token) []Slot {
	payload := tok.Payload
	n := len(payload) / 2
	if n == 0 {
		return nil
	}
	out := make([]Slot, 0, n)
	for i := 0; i < n; i++ {
		raw := payload[i*2 : i*2+2]
		if raw == "00" {
			continue
		}
		out = append(out, Slot{
			At:  bmstime.NewObjTime(bmstime.Track(tok.Track), uint64(i), uint64(n)),
			Raw: raw,
		})
	}
	return out
}

// decodeID parses a raw two-character id slot, folding it to its
// case-insensitive canonical form under the legacy base-36 encoding so
// "1a" and "1A" name the same object the way pre-#BASE-62 charts expect.
func decodeID(raw string, enc token.ChannelEncoding) (objid.ID, bool) {
	id, err := objid.Parse(raw)
	if err != nil {
		return "", false
	}
	if enc == token.ChannelBase36 {
		id = id.Fold()
	}
	return id, true
}

func decodeHexByte(raw string) (uint8, bool) {
	v, err := strconv.ParseUint(raw, 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}
