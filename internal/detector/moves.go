package detector

import "math"

// moveFunc computes the signed upward price move from b to a.
// The downward move is its negation, so one function covers both
// directions and the state machine stays mode-agnostic.
type moveFunc func(a, b int64) float64

// relativeMove measures moves as log ratios. Suited to series that behave
// like geometric Brownian motion, where changes scale with the price level.
func relativeMove(a, b int64) float64 {
	return math.Log(float64(a) / float64(b))
}

// absoluteMove measures moves as plain differences. Suited to series that
// behave like arithmetic Brownian motion.
func absoluteMove(a, b int64) float64 {
	return float64(a - b)
}
