package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

func TestScoreDimensionsScenarioA(t *testing.T) {
	rows := [][]float64{{5, 5, 5}, {5, 5, 5}, {5, 5, 5}}
	m := mustMatrix(t, []string{"a", "b", "c"}, rows)
	s := mustStructure(t, Dimension{Name: "Leadership", Items: []string{"a", "b", "c"}})

	scores, cov := ScoreDimensions(m, s, DefaultConfig())

	require.Len(t, scores, 1)
	assert.Equal(t, 100.0, scores[0].Mean)
	assert.Equal(t, 5.0, scores[0].ItemMean)
	assert.Equal(t, LevelExcellence, scores[0].Level)
	assert.Equal(t, LevelOptimizing, NewMaturityScorer(LikertMaturityTable).Level(scores[0].ItemMean))
	assert.Equal(t, []string{"Leadership"}, cov.Scored)
	assert.Empty(t, cov.Skipped)
}

func TestScoreDimensions(t *testing.T) {
	m := mustMatrix(t, []string{"a", "b", "c"}, [][]float64{
		{1, 3, 5},
		{2, nan, 4},
		{nan, nan, 1},
		{4, 4, 2},
	})
	s := mustStructure(t,
		Dimension{Name: "Pair", Items: []string{"a", "b"}},
		Dimension{Name: "Broken", Items: []string{"a", "zz"}},
	)

	scores, cov := ScoreDimensions(m, s, DefaultConfig())

	require.Len(t, scores, 1)
	pair := scores[0]
	assert.Equal(t, "Pair", pair.Name)
	// respondent means 2, 2, 4 on a 1-5 scale; the third row is empty
	assert.Equal(t, 3, pair.Respondents)
	assert.InDelta(t, 53.33, pair.Mean, 0.01)
	assert.Equal(t, 40.0, pair.Median)
	assert.Equal(t, 40.0, pair.P25)
	assert.Equal(t, 60.0, pair.P75)
	assert.Equal(t, LevelDeveloppement, pair.Level)

	require.Len(t, cov.Skipped, 1)
	assert.Equal(t, "Broken", cov.Skipped[0].Name)
	assert.Equal(t, []string{"zz"}, cov.Skipped[0].MissingItems)
}

func TestScoreDimensionsStaysWithinReportScale(t *testing.T) {
	m, s := surveyData(t, 80, 5)

	scores, _ := ScoreDimensions(m, s, DefaultConfig())
	for _, sc := range scores {
		assert.GreaterOrEqual(t, sc.Mean, 0.0)
		assert.LessOrEqual(t, sc.Mean, 100.0)
		assert.LessOrEqual(t, sc.P25, sc.Median)
		assert.LessOrEqual(t, sc.Median, sc.P75)
	}
}

func TestNewResponseMatrix(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		rows  [][]float64
	}{
		{"no items", nil, nil},
		{"duplicate items", []string{"a", "a"}, [][]float64{{1, 2}}},
		{"empty item id", []string{"a", ""}, [][]float64{{1, 2}}},
		{"ragged row", []string{"a", "b"}, [][]float64{{1}}},
		{"infinite value", []string{"a"}, [][]float64{{posInf}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResponseMatrix(tt.items, tt.rows)
			require.Error(t, err)
			assert.True(t, apperrors.IsCategory(err, apperrors.CategoryUpstreamData))
		})
	}

	t.Run("accessors return copies", func(t *testing.T) {
		rows := [][]float64{{1, 2}, {3, 4}}
		m := mustMatrix(t, []string{"a", "b"}, rows)
		rows[0][0] = 99

		col, ok := m.Column("a")
		require.True(t, ok)
		assert.Equal(t, []float64{1, 3}, col)
		col[0] = 42
		again, _ := m.Column("a")
		assert.Equal(t, 1.0, again[0])
		assert.Equal(t, []float64{3, 4}, m.Row(1))
	})
}

func TestValidateScale(t *testing.T) {
	m := mustMatrix(t, []string{"a", "b"}, [][]float64{{1, 7}, {nan, 3}})

	assert.NoError(t, m.ValidateScale([]string{"a"}, 1, 5))
	err := m.ValidateScale(nil, 1, 5)
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryUpstreamData))
}

func TestNewDimensionStructure(t *testing.T) {
	tests := []struct {
		name string
		dims []Dimension
	}{
		{"empty structure", nil},
		{"unnamed dimension", []Dimension{{Items: []string{"a"}}}},
		{"duplicate names", []Dimension{{Name: "x", Items: []string{"a"}}, {Name: "x", Items: []string{"b"}}}},
		{"no items", []Dimension{{Name: "x"}}},
		{"item repeated within dimension", []Dimension{{Name: "x", Items: []string{"a", "a"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDimensionStructure(tt.dims)
			require.Error(t, err)
			assert.True(t, apperrors.IsCategory(err, apperrors.CategoryUpstreamData))
		})
	}

	t.Run("items may repeat across dimensions", func(t *testing.T) {
		s := mustStructure(t,
			Dimension{Name: "x", Items: []string{"a", "b"}},
			Dimension{Name: "y", Items: []string{"b", "c"}},
		)
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, []string{"a", "b", "c"}, distinctItems(s.Dimensions()))
	})
}
