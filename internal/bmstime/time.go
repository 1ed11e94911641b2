package bmstime

import "math/big"

// Track is a non-negative measure index.
type Track uint64

// ObjTime denotes position Track + Numerator/Denominator within the chart,
// Denominator always > 0.
type ObjTime struct {
	Track            Track
	Numerator        uint64
	Denominator      uint64
}

// NewObjTime constructs an ObjTime, defaulting a zero denominator to 1 (the
// "whole track" position) rather than panicking; callers that need strict
// validation should check Denominator before constructing.
func NewObjTime(track Track, num, den uint64) ObjTime {
	if den == 0 {
		den = 1
	}
	return ObjTime{Track: track, Numerator: num, Denominator: den}
}

// Less implements the total order from: lexicographic on track,
// then cross-multiplied numerator/denominator comparison.
func (t ObjTime) Less(o ObjTime) bool {
	if t.Track != o.Track {
		return t.Track < o.Track
	}
	lhs := new(big.Int).Mul(big.NewInt(int64(t.Numerator)), big.NewInt(int64(o.Denominator)))
	rhs := new(big.Int).Mul(big.NewInt(int64(o.Numerator)), big.NewInt(int64(t.Denominator)))
	return lhs.Cmp(rhs) < 0
}

func (t ObjTime) Equal(o ObjTime) bool {
	return t.Track == o.Track && t.Numerator*o.Denominator == o.Numerator*t.Denominator
}

// Fraction returns Numerator/Denominator as a Decimal in [0, 1).
func (t ObjTime) Fraction() Decimal {
	return NewFromInt(int64(t.Numerator)).Div(NewFromInt(int64(t.Denominator)))
}

// Y-coordinate: a Decimal on the scroll axis, one unit per unmodified measure.
type Y = Decimal

// TimeSpan is a nonnegative monotonic duration in nanoseconds.
type TimeSpan int64

func (s TimeSpan) Nanoseconds() int64 { return int64(s) }

func (s TimeSpan) Seconds() float64 { return float64(s) / 1e9 }

func SpanFromSeconds(sec float64) TimeSpan { return TimeSpan(sec * 1e9) }

func (s TimeSpan) Add(o TimeSpan) TimeSpan { return s + o }

// Sub saturates at zero: spans never go negative.
func (s TimeSpan) Sub(o TimeSpan) TimeSpan {
	if o >= s {
		return 0
	}
	return s - o
}

// TimeStamp is an absolute instant, nanoseconds since an arbitrary epoch
// chosen by the caller (typically process start or chart start).
type TimeStamp int64

func TimeStampFromSeconds(sec float64) TimeStamp { return TimeStamp(sec * 1e9) }

// Sub saturates at zero rather than going negative, so a caller that polls
// with a stale or rewound "now" never observes elapsed time < 0.
func (t TimeStamp) Sub(o TimeStamp) TimeSpan {
	if t <= o {
		return 0
	}
	return TimeSpan(t - o)
}

func (t TimeStamp) Add(s TimeSpan) TimeStamp { return t + TimeStamp(s) }

func (t TimeStamp) Before(o TimeStamp) bool { return t < o }

func (t TimeStamp) After(o TimeStamp) bool { return t > o }
