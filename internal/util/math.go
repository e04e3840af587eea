package util

import "math"

// RoundHalfUp rounds to the nearest integer with ties going up, so 49.5
// becomes 50. Score composition depends on this exact tie-break at the
// pass/fail boundary.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Percentage converts a correct/total pair into a 0-100 score with
// half-up rounding.
func Percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return RoundHalfUp(100 * float64(part) / float64(total))
}
