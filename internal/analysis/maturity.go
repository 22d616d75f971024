package analysis

import (
	"fmt"
	"math"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// MaturityLevel is an ordinal label selected by a threshold table.
type MaturityLevel string

const (
	LevelInitial               MaturityLevel = "Initial"
	LevelManaged               MaturityLevel = "Managed"
	LevelDefined               MaturityLevel = "Defined"
	LevelQuantitativelyManaged MaturityLevel = "QuantitativelyManaged"
	LevelOptimizing            MaturityLevel = "Optimizing"

	LevelDeveloppement MaturityLevel = "Développement"
	LevelAmelioration  MaturityLevel = "Amélioration"
	LevelExcellence    MaturityLevel = "Excellence"
)

// Threshold maps a lower bound (inclusive) to a level.
type Threshold struct {
	Min   float64
	Level MaturityLevel
}

// MaturityTable is ordered from the highest cut down; Floor applies below
// every cut.
type MaturityTable struct {
	Cuts  []Threshold
	Floor MaturityLevel
}

// LikertMaturityTable grades item-scale means on a 1-5 scale.
var LikertMaturityTable = MaturityTable{
	Cuts: []Threshold{
		{4.5, LevelOptimizing},
		{3.5, LevelQuantitativelyManaged},
		{2.5, LevelDefined},
		{1.5, LevelManaged},
	},
	Floor: LevelInitial,
}

// PercentMaturityTable grades 0-100 report scores.
var PercentMaturityTable = MaturityTable{
	Cuts: []Threshold{
		{80, LevelExcellence},
		{60, LevelAmelioration},
		{40, LevelDeveloppement},
	},
	Floor: LevelInitial,
}

// Rank is the level's position in its table, 0 for the floor.
func (t MaturityTable) Rank(level MaturityLevel) int {
	for i, c := range t.Cuts {
		if c.Level == level {
			return len(t.Cuts) - i
		}
	}
	return 0
}

// Levels lists the table's levels from lowest to highest.
func (t MaturityTable) Levels() []MaturityLevel {
	out := []MaturityLevel{t.Floor}
	for i := len(t.Cuts) - 1; i >= 0; i-- {
		out = append(out, t.Cuts[i].Level)
	}
	return out
}

type MaturityScorer struct {
	table MaturityTable
}

func NewMaturityScorer(table MaturityTable) *MaturityScorer {
	return &MaturityScorer{table: table}
}

// Level returns the highest level whose cut the score reaches.
func (s *MaturityScorer) Level(score float64) MaturityLevel {
	for _, c := range s.table.Cuts {
		if score >= c.Min {
			return c.Level
		}
	}
	return s.table.Floor
}

// DimensionMean is a dimension's item-scale mean and spread across
// respondents.
type DimensionMean struct {
	Name   string
	Mean   float64
	StdDev float64
}

// WeightedMaturity averages dimension means by weight. A nil weight map
// weights every dimension 1; otherwise only weighted dimensions count.
func (s *MaturityScorer) WeightedMaturity(dims []DimensionMean, weights map[string]float64) (MaturityResult, error) {
	for name, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return MaturityResult{}, apperrors.NewConfigurationError(fmt.Sprintf("weight for %q must be finite and non-negative, got %v", name, w), nil)
		}
	}

	result := MaturityResult{Dimensions: make(map[string]DimensionMaturity)}
	var total, weighted float64
	for _, d := range dims {
		w := 1.0
		if weights != nil {
			var ok bool
			if w, ok = weights[d.Name]; !ok {
				continue
			}
		}
		result.Dimensions[d.Name] = DimensionMaturity{
			Score:         round2(d.Mean),
			Weight:        w,
			WeightedScore: round2(d.Mean * w),
			Level:         s.Level(d.Mean),
			StdDev:        round2(d.StdDev),
		}
		total += w
		weighted += d.Mean * w
	}

	if total <= 0 {
		return MaturityResult{}, apperrors.NewConfigurationError("total maturity weight over scored dimensions must be positive", nil)
	}

	overall := weighted / total
	result.Available = true
	result.Overall = round2(overall)
	result.OverallLevel = s.Level(overall)
	return result, nil
}

// Distribution counts respondents per level for each dimension. Missing
// respondent means are skipped.
func (s *MaturityScorer) Distribution(rowsByDimension map[string][]float64) map[string]map[MaturityLevel]int {
	out := make(map[string]map[MaturityLevel]int, len(rowsByDimension))
	for name, rows := range rowsByDimension {
		counts := make(map[MaturityLevel]int)
		for _, level := range s.table.Levels() {
			counts[level] = 0
		}
		for _, v := range rows {
			if math.IsNaN(v) {
				continue
			}
			counts[s.Level(v)]++
		}
		out[name] = counts
	}
	return out
}
