package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeDemographics(t *testing.T) {
	m := mustMatrix(t,
		[]string{"Department", "site_code", "age_band", "manage_1", "would_recommend"},
		[][]float64{
			{1, 10, 2, 4, 9},
			{2, 10, 3, 5, 8},
			{1, 20, nan, 3, 7},
			{1, 10, 3, 4, 10},
		})

	res := SummarizeDemographics(m, []string{"manage_1", "would_recommend"})

	assert.Equal(t, []string{"Department", "age_band", "site_code"}, res.Columns)
	assert.Equal(t, map[string]int{"1": 3, "2": 1}, res.Counts["Department"])
	assert.Equal(t, map[string]int{"10": 3, "20": 1}, res.Counts["site_code"])
	assert.Equal(t, map[string]int{"2": 1, "3": 2}, res.Counts["age_band"])
	assert.NotContains(t, res.Counts, "manage_1")
}

func TestSummarizeDemographicsExcludesScoredItems(t *testing.T) {
	m := mustMatrix(t, []string{"engagement_1", "engagement_2"}, [][]float64{{1, 2}, {3, 4}})

	res := SummarizeDemographics(m, []string{"engagement_1"})

	assert.Equal(t, []string{"engagement_2"}, res.Columns)
	assert.Empty(t, SummarizeDemographics(m, m.Items()).Columns)
}
