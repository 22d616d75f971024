package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nan    = math.NaN()
	posInf = math.Inf(1)
)

func TestMeanAndVariance(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		mean     float64
		variance float64
	}{
		{"empty column", []float64{}, 0, 0},
		{"all missing", []float64{nan, nan}, 0, 0},
		{"single value", []float64{4}, 4, 0},
		{"skips missing values", []float64{1, 2, nan, 3}, 2, 1},
		{"sample variance uses n-1", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 32.0 / 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.mean, Mean(tt.input), 1e-12)
			assert.InDelta(t, tt.variance, Variance(tt.input), 1e-12)
			assert.InDelta(t, math.Sqrt(tt.variance), StdDev(tt.input), 1e-12)
		})
	}
}

func TestSkewnessAndKurtosis(t *testing.T) {
	t.Run("symmetric data has no skew", func(t *testing.T) {
		assert.InDelta(t, 0, Skewness([]float64{1, 2, 3, 4, 5}), 1e-12)
	})

	t.Run("bias corrected excess kurtosis", func(t *testing.T) {
		assert.InDelta(t, -1.2, Kurtosis([]float64{1, 2, 3, 4, 5}), 1e-12)
	})

	t.Run("right tail gives positive skew", func(t *testing.T) {
		assert.Greater(t, Skewness([]float64{1, 1, 1, 2, 2, 10}), 0.0)
	})

	t.Run("too few values", func(t *testing.T) {
		assert.Equal(t, 0.0, Skewness([]float64{1, 2}))
		assert.Equal(t, 0.0, Kurtosis([]float64{1, 2, 3}))
	})

	t.Run("constant values", func(t *testing.T) {
		assert.Equal(t, 0.0, Skewness([]float64{3, 3, 3, 3}))
		assert.Equal(t, 0.0, Kurtosis([]float64{3, 3, 3, 3}))
	})
}

func TestQuantile(t *testing.T) {
	xs := []float64{4, 1, 3, 2, nan}

	assert.InDelta(t, 1.75, Quantile(xs, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(xs, 0.5), 1e-12)
	assert.InDelta(t, 3.25, Quantile(xs, 0.75), 1e-12)
	assert.Equal(t, 1.0, Quantile(xs, 0))
	assert.Equal(t, 4.0, Quantile(xs, 1))
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}

func TestMedianMinMax(t *testing.T) {
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 1.0, Min([]float64{4, nan, 1}))
	assert.Equal(t, 4.0, Max([]float64{4, nan, 1}))
	assert.Equal(t, 0.0, Min([]float64{nan}))
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name     string
		x, y     []float64
		expected float64
	}{
		{"perfect positive", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1},
		{"perfect negative", []float64{1, 2, 3, 4}, []float64{8, 6, 4, 2}, -1},
		{"constant side", []float64{1, 2, 3, 4}, []float64{3, 3, 3, 3}, 0},
		{"pairwise deletion", []float64{1, 2, nan, 4}, []float64{2, 4, 6, nan}, 1},
		{"fewer than two pairs", []float64{1, nan}, []float64{nan, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Pearson(tt.x, tt.y), 1e-12)
		})
	}
}

func TestRowAggregates(t *testing.T) {
	cols := [][]float64{
		{1, nan, nan},
		{3, 4, nan},
	}

	means := RowMeans(cols)
	assert.Equal(t, 2.0, means[0])
	assert.Equal(t, 4.0, means[1])
	assert.True(t, math.IsNaN(means[2]))

	assert.Equal(t, []float64{4, 4, 0}, RowSums(cols))

	cc := CompleteCases(cols)
	require.Len(t, cc, 2)
	assert.Equal(t, []float64{1}, cc[0])
	assert.Equal(t, []float64{3}, cc[1])
}

func TestStandardize(t *testing.T) {
	z := Standardize([][]float64{{1, 2, 3}, {5, 5, 5}})

	assert.InDelta(t, -math.Sqrt(1.5), z[0][0], 1e-12)
	assert.InDelta(t, 0, z[0][1], 1e-12)
	assert.InDelta(t, math.Sqrt(1.5), z[0][2], 1e-12)
	assert.Equal(t, []float64{0, 0, 0}, z[1])
}

func TestCorrelationMatrix(t *testing.T) {
	r := CorrelationMatrix([][]float64{
		{1, 2, 3, 4},
		{2, 4, 6, 8},
		{3, 3, 3, 3},
	})

	p, _ := r.Dims()
	require.Equal(t, 3, p)
	for i := 0; i < p; i++ {
		assert.Equal(t, 1.0, r.At(i, i))
	}
	assert.InDelta(t, 1, r.At(0, 1), 1e-12)
	assert.Equal(t, 0.0, r.At(0, 2))
	assert.Equal(t, r.At(1, 0), r.At(0, 1))
}

func TestDescribe(t *testing.T) {
	st := Describe([]float64{1, 2, nan, 3})

	assert.Equal(t, 3, st.Count)
	assert.Equal(t, 1, st.Missing)
	assert.Equal(t, 2.0, st.Mean)
	assert.Equal(t, 1.0, st.StdDev)
	assert.Equal(t, 1.0, st.Min)
	assert.Equal(t, 3.0, st.Max)
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.2345))
	assert.Equal(t, 1.235, round3(1.23456))
	assert.Equal(t, 0.0, round2(nan))
	assert.Equal(t, 0.0, sentinel(math.Inf(1)))
	assert.Equal(t, 1.0, clip(3, 0, 1))
	assert.Equal(t, 0.0, clip(-3, 0, 1))
}
