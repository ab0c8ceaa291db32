// Package rounding holds the numeric rounding rules shared by every
// calculator: round-half-up on the scaled integer, floor-at-zero and clamping.
package rounding

import "math"

// cents is the scale for two-decimal rounding.
const cents = 100

// Round2 rounds v to two decimals using round-half-up on the scaled value.
// Unlike math.Round it rounds -0.005 to 0 rather than -0.01.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Floor(v*cents+0.5) / cents
}

// Int rounds v to the nearest integer, halves rounding up.
func Int(v float64) float64 {
	return math.Floor(v + 0.5)
}

// FloorZero returns v, or 0 when v is negative.
func FloorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
