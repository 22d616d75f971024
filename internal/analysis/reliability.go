package analysis

import (
	"fmt"
	"math"
)

// CronbachAlpha computes internal consistency over complete cases:
//
//	alpha = k/(k-1) * (1 - sum(var_i) / var(rowSum))
//
// Negative values are floored at 0. Fewer than two items or respondents, or a
// constant row sum, give 0.
func CronbachAlpha(cols [][]float64) float64 {
	alpha, _ := cronbachAlpha(cols)
	return alpha
}

func cronbachAlpha(cols [][]float64) (float64, bool) {
	k := len(cols)
	if k < 2 {
		return 0, false
	}
	cc := CompleteCases(cols)
	if rowCount(cc) < 2 {
		return 0, false
	}

	var itemVar float64
	for _, c := range cc {
		itemVar += Variance(c)
	}
	totalVar := Variance(RowSums(cc))
	if totalVar == 0 {
		return 0, false
	}

	kf := float64(k)
	alpha := kf / (kf - 1) * (1 - itemVar/totalVar)
	return math.Max(0, alpha), true
}

// loadings approximates each item's loading by its absolute correlation with
// the respondent mean of the dimension.
func loadings(cols [][]float64) []float64 {
	means := RowMeans(cols)
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = math.Abs(Pearson(c, means))
	}
	return out
}

// CompositeReliability is (sum l)^2 / ((sum l)^2 + sum l^2) over item
// loadings, 0 when every loading is 0.
func CompositeReliability(cols [][]float64) float64 {
	var sum, sumSq float64
	for _, l := range loadings(cols) {
		sum += l
		sumSq += l * l
	}
	if sum == 0 {
		return 0
	}
	return (sum * sum) / (sum*sum + sumSq)
}

// SplitHalf correlates the odd and even item halves over complete cases and
// applies the Spearman-Brown correction. The result lies in [0, 1].
func SplitHalf(cols [][]float64) float64 {
	if len(cols) < 2 {
		return 0
	}
	cc := CompleteCases(cols)
	var odd, even [][]float64
	for i, c := range cc {
		if i%2 == 0 {
			odd = append(odd, c)
		} else {
			even = append(even, c)
		}
	}
	r := Pearson(RowSums(odd), RowSums(even))
	if r <= 0 {
		return 0
	}
	return clip(2*r/(1+r), 0, 1)
}

func assessReliability(data []dimensionData, cfg Config) (ReliabilityResult, []Flag) {
	var flags []Flag
	res := ReliabilityResult{Dimensions: make(map[string]DimensionReliability, len(data))}
	overall := len(data) > 0
	for _, d := range data {
		alpha, ok := cronbachAlpha(d.cols)
		if !ok {
			flags = append(flags, Flag{
				Section: "reliability",
				Kind:    FlagDegenerateInput,
				Message: fmt.Sprintf("cronbach alpha for %s needs at least 2 items, 2 complete respondents and a non-constant total", d.Name),
			})
		}
		cr := CompositeReliability(d.cols)

		entry := DimensionReliability{
			Alpha:           round3(alpha),
			AlphaAcceptable: alpha >= cfg.AlphaThreshold,
			CR:              round3(cr),
			CRAcceptable:    cr >= cfg.AlphaThreshold,
			SplitHalf:       round3(SplitHalf(d.cols)),
			Items:           len(d.cols),
			Respondents:     rowCount(CompleteCases(d.cols)),
		}
		if !entry.AlphaAcceptable {
			overall = false
		}
		res.Dimensions[d.Name] = entry
	}
	res.Overall = overall
	return res, flags
}
