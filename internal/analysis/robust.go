package analysis

import (
	"math"
)

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func roundTo(x float64, places int) float64 {
	x = sentinel(x)
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// round2 is the display precision for scores and percentages.
func round2(x float64) float64 { return roundTo(x, 2) }

// round3 is the display precision for coefficients.
func round3(x float64) float64 { return roundTo(x, 3) }

// present drops missing values.
func present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// sentinel maps NaN and Inf to the report's degenerate value.
func sentinel(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
