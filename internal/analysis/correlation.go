package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// CorrelationPValue is the two-sided p-value of r over n pairs from the t
// statistic r*sqrt((n-2)/(1-r^2)).
func CorrelationPValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * tDist.Survival(math.Abs(t))
}

func pairCount(x, y []float64) int {
	n := 0
	for i := range x {
		if !math.IsNaN(x[i]) && !math.IsNaN(y[i]) {
			n++
		}
	}
	return n
}

// analyzeCorrelations correlates respondent dimension means and lists pairs
// above the moderate threshold.
func analyzeCorrelations(data []dimensionData, cfg Config) CorrelationResult {
	res := CorrelationResult{
		Matrix:      make(map[string]map[string]float64, len(data)),
		PValues:     make(map[string]map[string]float64, len(data)),
		Significant: []SignificantCorrelation{},
	}
	for _, d := range data {
		res.Matrix[d.Name] = make(map[string]float64, len(data))
		res.PValues[d.Name] = make(map[string]float64, len(data))
	}

	for i := range data {
		res.Matrix[data[i].Name][data[i].Name] = 1
		res.PValues[data[i].Name][data[i].Name] = 0
		for j := i + 1; j < len(data); j++ {
			a, b := data[i], data[j]
			r := Pearson(a.rowMeans, b.rowMeans)
			pv := CorrelationPValue(r, pairCount(a.rowMeans, b.rowMeans))
			res.Matrix[a.Name][b.Name] = round3(r)
			res.Matrix[b.Name][a.Name] = round3(r)
			res.PValues[a.Name][b.Name] = round3(pv)
			res.PValues[b.Name][a.Name] = round3(pv)

			if math.Abs(r) > cfg.ModerateCorrelation {
				strength := "moderate"
				if math.Abs(r) > cfg.StrongCorrelation {
					strength = "strong"
				}
				res.Significant = append(res.Significant, SignificantCorrelation{
					Variables:   [2]string{a.Name, b.Name},
					Correlation: round3(r),
					PValue:      round3(pv),
					Strength:    strength,
				})
			}
		}
	}
	return res
}
