package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// Mean is the arithmetic mean of the non-missing values, 0 when there are none.
func Mean(xs []float64) float64 {
	var sum float64
	n := 0
	for _, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Variance is the unbiased sample variance (n-1 denominator), 0 when n < 2.
func Variance(xs []float64) float64 {
	vals := present(xs)
	n := len(vals)
	if n < 2 {
		return 0
	}
	m := Mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return ss / float64(n-1)
}

// StdDev is the square root of Variance.
func StdDev(xs []float64) float64 {
	return math.Sqrt(Variance(xs))
}

// centralMoments returns the population second, third and fourth central
// moments of vals.
func centralMoments(vals []float64) (m2, m3, m4 float64) {
	n := float64(len(vals))
	m := Mean(vals)
	for _, v := range vals {
		d := v - m
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	return m2 / n, m3 / n, m4 / n
}

// Skewness is the adjusted Fisher-Pearson coefficient G1.
//
//	G1 = g1 * sqrt(n(n-1)) / (n-2), g1 = m3 / m2^1.5
//
// It is 0 when n < 3 or the values are constant.
func Skewness(xs []float64) float64 {
	vals := present(xs)
	n := float64(len(vals))
	if n < 3 {
		return 0
	}
	m2, m3, _ := centralMoments(vals)
	if m2 == 0 {
		return 0
	}
	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// Kurtosis is the bias-corrected excess kurtosis G2.
//
//	G2 = ((n+1) g2 + 6) (n-1) / ((n-2)(n-3)), g2 = m4 / m2^2 - 3
//
// It is 0 when n < 4 or the values are constant.
func Kurtosis(xs []float64) float64 {
	vals := present(xs)
	n := float64(len(vals))
	if n < 4 {
		return 0
	}
	m2, _, m4 := centralMoments(vals)
	if m2 == 0 {
		return 0
	}
	g2 := m4/(m2*m2) - 3
	return ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
}

// Quantile interpolates linearly between order statistics (Hyndman-Fan type 7).
func Quantile(xs []float64, q float64) float64 {
	vals := present(xs)
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	q = clip(q, 0, 1)
	h := float64(len(vals)-1) * q
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return vals[int(lo)]
	}
	return vals[int(lo)] + (h-lo)*(vals[int(hi)]-vals[int(lo)])
}

// Median of the non-missing values, 0 when there are none.
func Median(xs []float64) float64 {
	v, err := stats.Median(present(xs))
	if err != nil {
		return 0
	}
	return v
}

// Min of the non-missing values, 0 when there are none.
func Min(xs []float64) float64 {
	v, err := stats.Min(present(xs))
	if err != nil {
		return 0
	}
	return v
}

// Max of the non-missing values, 0 when there are none.
func Max(xs []float64) float64 {
	v, err := stats.Max(present(xs))
	if err != nil {
		return 0
	}
	return v
}

// Pearson correlates x and y over the rows where both are present. It is 0
// with fewer than two pairs or when either side is constant.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return 0
	}

	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return clip(sxy/math.Sqrt(sxx*syy), -1, 1)
}

// Describe summarizes one column.
func Describe(xs []float64) ColumnStats {
	vals := present(xs)
	return ColumnStats{
		Count:    len(vals),
		Missing:  len(xs) - len(vals),
		Mean:     Mean(vals),
		StdDev:   StdDev(vals),
		Skewness: Skewness(vals),
		Kurtosis: Kurtosis(vals),
		Min:      Min(vals),
		Max:      Max(vals),
	}
}

func rowCount(cols [][]float64) int {
	if len(cols) == 0 {
		return 0
	}
	return len(cols[0])
}

// RowMeans averages each row over its non-missing values. A row with no
// values yields NaN.
func RowMeans(cols [][]float64) []float64 {
	n := rowCount(cols)
	out := make([]float64, n)
	for r := 0; r < n; r++ {
		var sum float64
		k := 0
		for _, c := range cols {
			if math.IsNaN(c[r]) {
				continue
			}
			sum += c[r]
			k++
		}
		if k == 0 {
			out[r] = math.NaN()
			continue
		}
		out[r] = sum / float64(k)
	}
	return out
}

// RowSums totals each row, skipping missing values.
func RowSums(cols [][]float64) []float64 {
	n := rowCount(cols)
	out := make([]float64, n)
	for r := 0; r < n; r++ {
		for _, c := range cols {
			if !math.IsNaN(c[r]) {
				out[r] += c[r]
			}
		}
	}
	return out
}

// CompleteCases keeps only the rows present in every column.
func CompleteCases(cols [][]float64) [][]float64 {
	n := rowCount(cols)
	keep := make([]int, 0, n)
	for r := 0; r < n; r++ {
		ok := true
		for _, c := range cols {
			if math.IsNaN(c[r]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, r)
		}
	}

	out := make([][]float64, len(cols))
	for i, c := range cols {
		out[i] = make([]float64, len(keep))
		for j, r := range keep {
			out[i][j] = c[r]
		}
	}
	return out
}

// Standardize z-scores each column with the population standard deviation.
// A constant column becomes all zeros.
func Standardize(cols [][]float64) [][]float64 {
	out := make([][]float64, len(cols))
	for i, c := range cols {
		vals := present(c)
		m := Mean(vals)
		var ss float64
		for _, v := range vals {
			ss += (v - m) * (v - m)
		}
		sd := 0.0
		if len(vals) > 0 {
			sd = math.Sqrt(ss / float64(len(vals)))
		}

		out[i] = make([]float64, len(c))
		for r, v := range c {
			switch {
			case math.IsNaN(v):
				out[i][r] = math.NaN()
			case sd == 0:
				out[i][r] = 0
			default:
				out[i][r] = (v - m) / sd
			}
		}
	}
	return out
}

// CorrelationMatrix builds the pairwise Pearson matrix with a unit diagonal.
func CorrelationMatrix(cols [][]float64) *mat.SymDense {
	p := len(cols)
	r := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		r.SetSym(i, i, 1)
		for j := i + 1; j < p; j++ {
			r.SetSym(i, j, Pearson(cols[i], cols[j]))
		}
	}
	return r
}

// eigenvaluesDesc returns the eigenvalues of a symmetric matrix, largest first.
func eigenvaluesDesc(r *mat.SymDense) ([]float64, bool) {
	var eig mat.EigenSym
	if ok := eig.Factorize(r, false); !ok {
		return nil, false
	}
	vals := eig.Values(nil)
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	return vals, true
}
