package analysis

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// KMO computes the Kaiser-Meyer-Olkin sampling adequacy from a correlation
// matrix, using partial correlations taken from its inverse.
func KMO(r *mat.SymDense) (float64, bool) {
	p, _ := r.Dims()
	if p < 2 {
		return 0, false
	}
	var inv mat.Dense
	if err := inv.Inverse(r); err != nil {
		return 0, false
	}

	var r2, a2 float64
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			if i == j {
				continue
			}
			rij := r.At(i, j)
			d := inv.At(i, i) * inv.At(j, j)
			if d <= 0 {
				return 0, false
			}
			aij := -inv.At(i, j) / math.Sqrt(d)
			r2 += rij * rij
			a2 += aij * aij
		}
	}
	if r2+a2 == 0 {
		return 0, false
	}
	return r2 / (r2 + a2), true
}

// Bartlett tests the correlation matrix of n respondents against identity.
func Bartlett(r *mat.SymDense, n int) (chi float64, df int, pValue float64, ok bool) {
	p, _ := r.Dims()
	if p < 2 {
		return 0, 0, 1, false
	}
	logDet, sign := mat.LogDet(r)
	if sign <= 0 || math.IsInf(logDet, 0) || math.IsNaN(logDet) {
		return 0, 0, 1, false
	}
	factor := float64(n) - 1 - float64(2*p+5)/6
	if factor <= 0 {
		return 0, 0, 1, false
	}

	chi = -factor * logDet
	df = p * (p - 1) / 2
	pValue = distuv.ChiSquared{K: float64(df)}.Survival(chi)
	return chi, df, pValue, true
}

// ParallelAnalysis retains the leading factors whose observed eigenvalue
// beats the mean eigenvalue of seeded random normal data of the same shape.
func ParallelAnalysis(observed []float64, n, p, iterations int, seed int64) int {
	if len(observed) == 0 || n < 2 || p < 1 || iterations <= 0 {
		return 1
	}
	rng := rand.New(rand.NewSource(seed))
	mean := make([]float64, p)
	for it := 0; it < iterations; it++ {
		cols := make([][]float64, p)
		for j := range cols {
			cols[j] = make([]float64, n)
			for i := range cols[j] {
				cols[j][i] = rng.NormFloat64()
			}
		}
		eig, ok := eigenvaluesDesc(CorrelationMatrix(cols))
		if !ok {
			continue
		}
		for k := 0; k < p && k < len(eig); k++ {
			mean[k] += eig[k] / float64(iterations)
		}
	}

	retained := 0
	for k := 0; k < len(observed) && k < p; k++ {
		if observed[k] <= mean[k] {
			break
		}
		retained++
	}
	if retained < 1 {
		retained = 1
	}
	return retained
}

func assessDimensionality(m *ResponseMatrix, data []dimensionData, cfg Config) (DimensionalityResult, []Flag) {
	res := DimensionalityResult{TheoreticalFactors: len(data), RecommendedFactors: 1}
	unavailable := func(reason string) (DimensionalityResult, []Flag) {
		res.Method = reason
		return res, []Flag{{Section: "dimensionality", Kind: FlagDegenerateInput, Message: reason}}
	}

	items := distinctItems(dimensionsOf(data))
	if len(items) < 2 {
		return unavailable("factor adequacy needs at least 2 items")
	}
	cols, _ := m.Columns(items)
	cc := CompleteCases(cols)
	n, p := rowCount(cc), len(cc)
	if n < 3 {
		return unavailable("factor adequacy needs at least 3 complete respondents")
	}

	r := CorrelationMatrix(cc)
	eig, ok := eigenvaluesDesc(r)
	if !ok {
		return unavailable("eigen decomposition did not converge")
	}
	for _, v := range eig {
		if v > 1 {
			res.KaiserFactors++
		}
	}

	var flags []Flag
	if kmo, ok := KMO(r); ok {
		res.KMO = KMOResult{Available: true, Value: round3(kmo), Adequate: kmo > cfg.KMOThreshold}
	} else {
		flags = append(flags, Flag{Section: "dimensionality.kmo", Kind: FlagDegenerateInput, Message: "correlation matrix is singular"})
	}

	if chi, df, pv, ok := Bartlett(r, n); ok {
		res.Bartlett = BartlettResult{
			Available:   true,
			ChiSquare:   round3(chi),
			DF:          df,
			PValue:      round3(pv),
			Significant: pv < cfg.SignificanceLevel,
		}
	} else {
		flags = append(flags, Flag{Section: "dimensionality.bartlett", Kind: FlagDegenerateInput, Message: "correlation matrix is singular or the sample is too small"})
	}

	res.RecommendedFactors = ParallelAnalysis(eig, n, p, cfg.ParallelIterations, cfg.Seed)
	res.Method = fmt.Sprintf("parallel analysis over %d random samples", cfg.ParallelIterations)
	res.Adequate = res.KMO.Adequate && res.Bartlett.Significant
	return res, flags
}
