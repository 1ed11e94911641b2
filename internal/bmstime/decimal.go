// Package bmstime holds every exact-arithmetic primitive the chart pipeline
// needs: Decimal (tempos, stops, scroll/speed factors, section lengths),
// ObjTime (track + fractional position), Track, Y-coordinate and the
// saturating TimeSpan/TimeStamp pair.
package bmstime

import "github.com/shopspring/decimal"

// Decimal is an arbitrary-precision base-10 decimal re-exported from
// shopspring/decimal so every package in this module shares one import and
// one rounding policy. Addition, subtraction and multiplication are exact;
// Div rounds its quotient to shopspring's DivisionPrecision fractional
// digits, so a quotient such as 1/3 is not exact. AsFloat64 is the only
// conversion to floating point.
type Decimal = decimal.Decimal

func NewFromInt(v int64) Decimal { return decimal.NewFromInt(v) }

func NewFromString(s string) (Decimal, error) { return decimal.NewFromString(s) }

func NewFromFloat(f float64) Decimal { return decimal.NewFromFloat(f) }

var (
	Zero = decimal.Zero
	One  = decimal.NewFromInt(1)
)

// AsFloat64 is the single narrowing conversion point for the decimal
// pipeline: use only at the display/output boundary, never inside it.
func AsFloat64(d Decimal) float64 {
	f, _ := d.Float64()
	return f
}
