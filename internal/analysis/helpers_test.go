package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustMatrix(t *testing.T, items []string, rows [][]float64) *ResponseMatrix {
	t.Helper()
	m, err := NewResponseMatrix(items, rows)
	require.NoError(t, err)
	return m
}

func mustStructure(t *testing.T, dims ...Dimension) *DimensionStructure {
	t.Helper()
	s, err := NewDimensionStructure(dims)
	require.NoError(t, err)
	return s
}

// constantColumn repeats v n times.
func constantColumn(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// surveyData builds n respondents over three three-item dimensions driven by
// one latent factor each, plus a 0-10 recommendation item.
func surveyData(t *testing.T, n int, seed int64) (*ResponseMatrix, *DimensionStructure) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	dims := []string{"Leadership", "Engagement", "Process"}

	var items []string
	structure := make([]Dimension, 0, len(dims))
	for _, d := range dims {
		dim := Dimension{Name: d}
		for i := 1; i <= 3; i++ {
			id := fmt.Sprintf("%s_%d", d[:3], i)
			dim.Items = append(dim.Items, id)
			items = append(items, id)
		}
		structure = append(structure, dim)
	}
	items = append(items, "would_recommend")

	likert := func(x float64) float64 { return clip(math.Round(x), 1, 5) }
	rows := make([][]float64, n)
	for r := range rows {
		row := make([]float64, 0, len(items))
		latent := make([]float64, len(dims))
		for d := range dims {
			latent[d] = rng.NormFloat64()
			for i := 0; i < 3; i++ {
				row = append(row, likert(3+latent[d]+0.5*rng.NormFloat64()))
			}
		}
		row = append(row, clip(math.Round(7+1.5*latent[0]), 0, 10))
		rows[r] = row
	}

	return mustMatrix(t, items, rows), mustStructure(t, structure...)
}
