package analysis

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

const notAvailable = "not available"

// PercentileCuts are the reference values at the 25th, 50th, 75th and 90th
// percentiles.
type PercentileCuts struct {
	P25 float64 `json:"p25" yaml:"p25"`
	P50 float64 `json:"p50" yaml:"p50"`
	P75 float64 `json:"p75" yaml:"p75"`
	P90 float64 `json:"p90" yaml:"p90"`
}

type ReferenceMetric struct {
	Average float64        `json:"average" yaml:"average"`
	Cuts    PercentileCuts `json:"cuts" yaml:"cuts"`
}

// Reference is a precomputed percentile table for one sector.
type Reference struct {
	Sector  string                     `json:"sector" yaml:"sector"`
	Metrics map[string]ReferenceMetric `json:"metrics" yaml:"metrics"`
}

// Validate checks every metric is finite with ascending cuts.
func (r *Reference) Validate() error {
	for name, m := range r.Metrics {
		vals := []float64{m.Average, m.Cuts.P25, m.Cuts.P50, m.Cuts.P75, m.Cuts.P90}
		for _, v := range vals {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return apperrors.NewUpstreamDataError("reference metric is not finite", map[string]interface{}{"metric": name})
			}
		}
		if !sort.Float64sAreSorted(vals[1:]) {
			return apperrors.NewUpstreamDataError("reference cuts must ascend", map[string]interface{}{"metric": name})
		}
	}
	return nil
}

// ReferenceFromDataset derives the average and type-7 percentile cuts of each
// metric from raw reference observations. Metric names are canonicalized the
// way dimension names are when a report is compared.
func ReferenceFromDataset(sector string, data map[string][]float64) (*Reference, error) {
	ref := &Reference{Sector: sector, Metrics: make(map[string]ReferenceMetric, len(data))}
	for name, xs := range data {
		if len(present(xs)) == 0 {
			return nil, apperrors.NewUpstreamDataError(fmt.Sprintf("reference metric %s has no observations", name), nil)
		}
		ref.Metrics[canonical(name)] = ReferenceMetric{
			Average: Mean(xs),
			Cuts: PercentileCuts{
				P25: Quantile(xs, 0.25),
				P50: Quantile(xs, 0.50),
				P75: Quantile(xs, 0.75),
				P90: Quantile(xs, 0.90),
			},
		}
	}
	return ref, ref.Validate()
}

// Tier buckets a score by the reference cuts (inclusive).
func (c PercentileCuts) Tier(score float64) int {
	switch {
	case score >= c.P90:
		return 90
	case score >= c.P75:
		return 75
	case score >= c.P50:
		return 50
	case score >= c.P25:
		return 25
	default:
		return 10
	}
}

// PerformanceLabel names a percentile tier.
func PerformanceLabel(tier int) string {
	switch {
	case tier >= 90:
		return "Excellent"
	case tier >= 75:
		return "Good"
	case tier >= 50:
		return "Average"
	default:
		return "NeedsImprovement"
	}
}

// Compare benchmarks own metrics against ref. Metrics missing from the
// reference, or every metric when ref is nil, are reported as not available.
func Compare(own map[string]float64, ref *Reference) BenchmarkResult {
	names := make([]string, 0, len(own))
	for name := range own {
		names = append(names, name)
	}
	sort.Strings(names)

	res := BenchmarkResult{Comparisons: make([]BenchmarkComparison, 0, len(names))}
	if ref != nil {
		res.Sector = ref.Sector
	}
	for _, name := range names {
		score := own[name]
		cmp := BenchmarkComparison{Metric: name, Score: round2(score), PerformanceLabel: notAvailable}
		if ref != nil {
			if m, ok := ref.Metrics[name]; ok {
				avg := round2(m.Average)
				gap := round2(score - m.Average)
				tier := m.Cuts.Tier(score)
				cmp.Available = true
				cmp.ReferenceAverage = &avg
				cmp.Gap = &gap
				cmp.Percentile = &tier
				cmp.PerformanceLabel = PerformanceLabel(tier)
				res.Available = true
			}
		}
		res.Comparisons = append(res.Comparisons, cmp)
	}
	return res
}
