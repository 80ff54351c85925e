package numeric

import (
	"math"
	"testing"
)

// TestRound verifies half-away-from-zero rounding at two decimal places and
// the zero fallback for non-finite input.
func TestRound(t *testing.T) {
	cases := []struct {
		in     float64
		digits int
		want   float64
	}{
		{1.005, 2, 1.0}, // binary representation of 1.005 is just below the midpoint
		{2.675, 2, 2.67},
		{1.0049, 2, 1.0},
		{-1.235, 2, -1.24},
		{96.97, 2, 96.97},
		{0.975, 3, 0.975},
		{8342, 0, 8342},
		{math.NaN(), 2, 0},
		{math.Inf(1), 2, 0},
		{math.Inf(-1), 2, 0},
	}
	for _, tc := range cases {
		if got := Round(tc.in, tc.digits); got != tc.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tc.in, tc.digits, got, tc.want)
		}
	}
}

// TestRoundIdempotent verifies that rounding an already-rounded value is a
// no-op for a spread of inputs and digit counts.
func TestRoundIdempotent(t *testing.T) {
	inputs := []float64{0, 1.005, 2.675, -13.37521, 97.0049, 450.08, 1e9 + 0.123}
	for _, x := range inputs {
		for d := 0; d <= 4; d++ {
			once := Round(x, d)
			twice := Round(once, d)
			if once != twice {
				t.Errorf("Round not idempotent: Round(%v, %d) = %v, re-rounded %v", x, d, once, twice)
			}
		}
	}
}

// TestIsBridgeSafe verifies the safety gate: finite numerics, booleans, and
// strings pass; NaN, infinities, and unsupported types are rejected.
func TestIsBridgeSafe(t *testing.T) {
	safe := []any{1.5, float32(2.5), 0.0, 42, int64(7), true, false, "latestAvailable"}
	for _, v := range safe {
		if !IsBridgeSafe(v) {
			t.Errorf("IsBridgeSafe(%v) = false, want true", v)
		}
	}
	unsafe := []any{math.NaN(), math.Inf(1), math.Inf(-1), float32(float64(math.Inf(1))), nil, []int{1}}
	for _, v := range unsafe {
		if IsBridgeSafe(v) {
			t.Errorf("IsBridgeSafe(%v) = true, want false", v)
		}
	}
}

// TestNormalizePercent verifies both input forms land on the same 0–100
// scale.
func TestNormalizePercent(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.95, 95},
		{95, 95},
		{0.97, 97},
		{1, 100},
		{100, 100},
		{0, 0},
	}
	for _, tc := range cases {
		if got := NormalizePercent(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("NormalizePercent(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
