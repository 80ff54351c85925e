// Package numeric holds the value normalization helpers applied to every
// number before it is merged into a snapshot section.
package numeric

import "math"

// Round rounds half-away-from-zero to the given number of decimal places.
// Non-finite input (NaN, ±Inf) rounds to 0, so the output is always finite.
func Round(value float64, digits int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	scale := math.Pow(10, float64(digits))
	return math.Round(value*scale) / scale
}

// IsBridgeSafe reports whether a value may be merged into a snapshot
// section. Numerics must be finite; booleans and strings are always safe.
func IsBridgeSafe(v any) bool {
	switch x := v.(type) {
	case float64:
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	case float32:
		f := float64(x)
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case int, int32, int64, bool, string:
		return true
	default:
		return false
	}
}

// NormalizePercent accepts a percent-like reading that may arrive either as
// a 0–1 fraction or an already-scaled 0–100 number and returns the 0–100
// form. Applied to oxygen saturation and AFib burden.
func NormalizePercent(raw float64) float64 {
	if raw <= 1 {
		return raw * 100
	}
	return raw
}
