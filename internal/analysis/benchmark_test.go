package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

func TestCompareWithoutReference(t *testing.T) {
	res := Compare(map[string]float64{"npqs": 30, "maturity": 3.9}, nil)

	assert.False(t, res.Available)
	require.Len(t, res.Comparisons, 2)
	for _, c := range res.Comparisons {
		assert.False(t, c.Available)
		assert.Nil(t, c.ReferenceAverage)
		assert.Nil(t, c.Gap)
		assert.Nil(t, c.Percentile)
		assert.Equal(t, "not available", c.PerformanceLabel)
	}
}

func TestCompareWithReference(t *testing.T) {
	own := map[string]float64{
		"npqs":       30,
		"maturity":   4.4,
		"leadership": 2.1,
		"unlisted":   3,
	}

	res := Compare(own, DefaultReference())

	require.True(t, res.Available)
	byMetric := make(map[string]BenchmarkComparison)
	for _, c := range res.Comparisons {
		byMetric[c.Metric] = c
	}

	tests := []struct {
		metric string
		gap    float64
		tier   int
		label  string
	}{
		{"npqs", 5, 50, "Average"},
		{"maturity", 1.2, 90, "Excellent"},
		{"leadership", -1.3, 10, "NeedsImprovement"},
	}
	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			c := byMetric[tt.metric]
			require.True(t, c.Available)
			require.NotNil(t, c.Gap)
			require.NotNil(t, c.Percentile)
			assert.InDelta(t, tt.gap, *c.Gap, 1e-9)
			assert.Equal(t, tt.tier, *c.Percentile)
			assert.Equal(t, tt.label, c.PerformanceLabel)
		})
	}

	assert.False(t, byMetric["unlisted"].Available)
	assert.Equal(t, "not available", byMetric["unlisted"].PerformanceLabel)
}

func TestTierBoundariesAreInclusive(t *testing.T) {
	cuts := PercentileCuts{P25: 10, P50: 25, P75: 40, P90: 55}

	assert.Equal(t, 90, cuts.Tier(55))
	assert.Equal(t, 75, cuts.Tier(40))
	assert.Equal(t, 50, cuts.Tier(25))
	assert.Equal(t, 25, cuts.Tier(10))
	assert.Equal(t, 10, cuts.Tier(9.99))
	assert.Equal(t, "Good", PerformanceLabel(75))
}

func TestReferenceFromDataset(t *testing.T) {
	ref, err := ReferenceFromDataset("pharma", map[string][]float64{
		"npqs": {1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	})
	require.NoError(t, err)

	m := ref.Metrics["npqs"]
	assert.Equal(t, "pharma", ref.Sector)
	assert.InDelta(t, 5.5, m.Average, 1e-9)
	assert.InDelta(t, 3.25, m.Cuts.P25, 1e-9)
	assert.InDelta(t, 5.5, m.Cuts.P50, 1e-9)
	assert.InDelta(t, 7.75, m.Cuts.P75, 1e-9)
	assert.InDelta(t, 9.1, m.Cuts.P90, 1e-9)

	_, err = ReferenceFromDataset("empty", map[string][]float64{"npqs": {nan}})
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryUpstreamData))
}

func TestReferenceValidate(t *testing.T) {
	bad := &Reference{Metrics: map[string]ReferenceMetric{
		"npqs": {Average: 1, Cuts: PercentileCuts{P25: 5, P50: 4, P75: 6, P90: 7}},
	}}
	assert.Error(t, bad.Validate())
	assert.NoError(t, DefaultReference().Validate())
}

func TestCompareMatchesMultiWordDimensions(t *testing.T) {
	ref, err := ReferenceFromDataset("automotive", map[string][]float64{
		"Process Approach": {2, 3, 4, 5},
	})
	require.NoError(t, err)
	require.Contains(t, ref.Metrics, "process_approach")

	report := &Report{Dimensions: []DimensionScore{{Name: "Process Approach", Respondents: 8, ItemMean: 3.5}}}
	own := ownMetrics(report)
	require.Contains(t, own, "process_approach")

	res := Compare(own, ref)
	require.Len(t, res.Comparisons, 1)
	assert.True(t, res.Comparisons[0].Available)
	assert.Equal(t, "process_approach", res.Comparisons[0].Metric)
	assert.Equal(t, 0.0, *res.Comparisons[0].Gap)
}
