package bmstime

import "testing"

func TestObjTimeLess(t *testing.T) {
	a := NewObjTime(1, 1, 2) // 1.5
	b := NewObjTime(1, 3, 4) // 1.75
	c := NewObjTime(2, 0, 1) // 2.0

	if !a.Less(b) {
		t.Error("1+1/2 should be less than 1+3/4")
	}
	if b.Less(a) {
		t.Error("1+3/4 should not be less than 1+1/2")
	}
	if !b.Less(c) {
		t.Error("1+3/4 should be less than 2")
	}
}

func TestObjTimeEqual(t *testing.T) {
	a := NewObjTime(1, 1, 2)
	b := NewObjTime(1, 2, 4)
	if !a.Equal(b) {
		t.Error("1/2 should equal 2/4")
	}
}

func TestTimeSpanSaturates(t *testing.T) {
	a := TimeStampFromSeconds(1.0)
	b := TimeStampFromSeconds(2.0)
	if span := a.Sub(b); span != 0 {
		t.Errorf("rewind should saturate to 0, got %v", span)
	}
	if span := b.Sub(a); span.Seconds() != 1.0 {
		t.Errorf("expected 1s span, got %v", span.Seconds())
	}
}
