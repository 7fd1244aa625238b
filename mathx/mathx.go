// Package mathx holds the small numeric guards shared by every engine.
package mathx

import "math"

// Clamp bounds v to [lo, hi]. NaN maps to lo so that a bad input never
// reaches a visualization.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Percent clamps v to the [0,100] percentage range.
func Percent(v float64) float64 {
	return Clamp(v, 0, 100)
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// OrZero returns v when finite and 0 otherwise.
func OrZero(v float64) float64 {
	if Finite(v) {
		return v
	}
	return 0
}

// SafeDiv divides num by den and returns fallback when den is zero or the
// quotient is not finite.
func SafeDiv(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	q := num / den
	if !Finite(q) {
		return fallback
	}
	return q
}
