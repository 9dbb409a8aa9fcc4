package selection

import "testing"

func TestDeriveSeed(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0},
		{"a", 97},
		{"2024-01-01", 613341632},
		{"2024-02-29", 613311771},
		{"2025-10-17", 275055816},
		{"日本語", 25921943},
		{"😀", 1772899}, // surrogate pair, two code units
		{"the quick brown fox jumps over the lazy dog 2024-12-31", 155877558},
	}
	for _, tt := range tests {
		if got := DeriveSeed(tt.in); got != tt.want {
			t.Errorf("DeriveSeed(%q) = %d; want %d", tt.in, got, tt.want)
		}
	}
}

func TestDeriveSeedIsStable(t *testing.T) {
	for _, s := range []string{"2024-01-01", "x", "some longer input with spaces"} {
		first := DeriveSeed(s)
		for i := 0; i < 10; i++ {
			if got := DeriveSeed(s); got != first {
				t.Fatalf("DeriveSeed(%q) changed between calls: %d then %d", s, first, got)
			}
		}
	}
}

func TestDeriveSeedNonNegativeAfterOverflow(t *testing.T) {
	// Long inputs overflow the accumulator many times; the result must still
	// be the absolute value of a signed 32-bit integer.
	s := ""
	for i := 0; i < 200; i++ {
		s += "zz"
	}
	if got := DeriveSeed(s); got > 1<<31 {
		t.Fatalf("DeriveSeed returned %d, outside the |int32| range", got)
	}
}
