// Package keylayout is the external collaborator for mapping note channels:
// concrete key-layout dictionaries live outside this module's hard scope
// (exotic controller modes are out of scope), but the core still needs an
// interface to resolve a note channel into (side, key) and a couple of
// conventional dictionaries to drive tests and the CLI.
package keylayout

import "github.com/nitro-chart/bmscore/internal/chartevent"

// Dictionary maps a raw two-character note channel (11..1Z / 21..2Z) to a
// playable (side, key) pair.
type Dictionary interface {
	Lookup(ch string) (side chartevent.Side, key int, ok bool)
}

func sideOf(ch string) (chartevent.Side, bool) {
	if len(ch) != 2 {
		return chartevent.SideNone, false
	}
	switch ch[0] {
	case '1':
		return chartevent.Side1P, true
	case '2':
		return chartevent.Side2P, true
	default:
		return chartevent.SideNone, false
	}
}

// Beat7K is the classic 7+1 (5 keys + scratch, no 6/7) convention: second
// channel character '1'..'5' are playable keys 1-5, '6' is the scratch
// lane (reported as key 6), '8'/'9' extend the 7-key variant and are
// reported as keys 7 and 8. '0' and '7' are unmapped.
type Beat7K struct{}

var beat7kKeys = map[byte]int{'1': 1, '2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '8': 7, '9': 8}

func (Beat7K) Lookup(ch string) (chartevent.Side, int, bool) {
	side, ok := sideOf(ch)
	if !ok {
		return chartevent.SideNone, 0, false
	}
	key, ok := beat7kKeys[ch[1]]
	return side, key, ok
}

// Resolve adapts Lookup to chart.KeyLayoutChecker's simpler bool contract.
func (d Beat7K) Resolve(ch string) bool {
	_, _, ok := d.Lookup(ch)
	return ok
}

// Beat14K doubles the single-side dictionary across both 1P/2P halves of a
// double-sided cabinet, matching popmusic/beatmania IIDX DP charts.
type Beat14K struct{}

func (Beat14K) Lookup(ch string) (chartevent.Side, int, bool) {
	return Beat7K{}.Lookup(ch)
}

func (d Beat14K) Resolve(ch string) bool {
	_, _, ok := d.Lookup(ch)
	return ok
}

// PopN is a PMS-style 9-key single-sided dictionary (no scratch).
type PopN struct{}

var popNKeys = map[byte]int{'1': 1, '2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7, '8': 8, '9': 9}

func (PopN) Lookup(ch string) (chartevent.Side, int, bool) {
	side, ok := sideOf(ch)
	if !ok || side != chartevent.Side1P {
		return chartevent.SideNone, 0, false
	}
	key, ok := popNKeys[ch[1]]
	return side, key, ok
}

func (d PopN) Resolve(ch string) bool {
	_, _, ok := d.Lookup(ch)
	return ok
}
