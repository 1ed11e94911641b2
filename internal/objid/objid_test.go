package objid

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := []string{"00", "01", "1Z", "zz", "Az", "a1"}
	for _, s := range cases {
		id, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if id.String() != s {
			t.Errorf("String() round trip: got %q want %q", id.String(), s)
		}
	}
}

func TestIntRoundTrip(t *testing.T) {
	for v := 0; v < 62*62; v += 37 {
		id, err := FromInt(v)
		if err != nil {
			t.Fatalf("FromInt(%d): %v", v, err)
		}
		got, err := id.Int()
		if err != nil {
			t.Fatalf("Int(): %v", err)
		}
		if got != v {
			t.Errorf("FromInt(%d).Int() = %d", v, got)
		}
	}
}

func TestNullID(t *testing.T) {
	if !Null.IsNull() {
		t.Error("Null should report IsNull")
	}
	id, _ := Parse("5A")
	if id.IsNull() {
		t.Error("non-null id reported as null")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, s := range []string{"0", "000", "0!", "-1"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) should have failed", s)
		}
	}
}
