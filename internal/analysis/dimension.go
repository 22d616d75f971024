package analysis

import (
	"fmt"
	"math"
)

// dimensionData is a scorable dimension with its item columns and the
// per-respondent item-scale means. Built once per run and shared read-only.
type dimensionData struct {
	Dimension
	cols     [][]float64
	rowMeans []float64
}

func collectDimensions(m *ResponseMatrix, dims []Dimension) []dimensionData {
	out := make([]dimensionData, 0, len(dims))
	for _, d := range dims {
		cols, _ := m.Columns(d.Items)
		out = append(out, dimensionData{Dimension: d, cols: cols, rowMeans: RowMeans(cols)})
	}
	return out
}

func dimensionNames(data []dimensionData) []string {
	names := make([]string, len(data))
	for i, d := range data {
		names[i] = d.Name
	}
	return names
}

// ScoreDimensions converts each fully present dimension to the 0-100 report
// scale. Dimensions with an absent item are listed in the coverage and never
// partially scored.
func ScoreDimensions(m *ResponseMatrix, s *DimensionStructure, cfg Config) ([]DimensionScore, Coverage) {
	dims, skipped := s.Resolve(m)
	scores, _ := scoreDimensions(collectDimensions(m, dims), cfg)
	cov := Coverage{Scored: make([]string, 0, len(dims)), Skipped: skipped}
	for _, d := range dims {
		cov.Scored = append(cov.Scored, d.Name)
	}
	if cov.Skipped == nil {
		cov.Skipped = []SkippedDimension{}
	}
	return scores, cov
}

func scoreDimensions(data []dimensionData, cfg Config) ([]DimensionScore, []Flag) {
	scorer := NewMaturityScorer(PercentMaturityTable)
	factor := 100 / cfg.ScaleMax

	var flags []Flag
	scores := make([]DimensionScore, 0, len(data))
	for _, d := range data {
		scaled := make([]float64, 0, len(d.rowMeans))
		for _, v := range d.rowMeans {
			if math.IsNaN(v) {
				continue
			}
			scaled = append(scaled, v*factor)
		}
		if len(scaled) == 0 {
			flags = append(flags, Flag{
				Section: "dimension_scores",
				Kind:    FlagDegenerateInput,
				Message: fmt.Sprintf("dimension %s has no respondents with a response", d.Name),
			})
		}

		mean := Mean(scaled)
		scores = append(scores, DimensionScore{
			Name:        d.Name,
			Respondents: len(scaled),
			Mean:        round2(mean),
			StdDev:      round2(StdDev(scaled)),
			Median:      round2(Median(scaled)),
			P25:         round2(Quantile(scaled, 0.25)),
			P75:         round2(Quantile(scaled, 0.75)),
			ItemMean:    round2(Mean(d.rowMeans)),
			Level:       scorer.Level(mean),
		})
	}
	return scores, flags
}
