package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// trendDirection compares the two half means at reporting precision.
func trendDirection(first, second float64) string {
	switch {
	case second > first:
		return TrendImproving
	case second < first:
		return TrendDeclining
	default:
		return TrendStable
	}
}

type trendPeriod struct {
	key  float64
	rows []int
}

// trendPeriods groups rows by the value of timeItem, oldest first. Without a
// time item every row is its own period in matrix order.
func trendPeriods(m *ResponseMatrix, timeItem string) ([]trendPeriod, error) {
	if timeItem == "" {
		periods := make([]trendPeriod, m.Rows())
		for r := range periods {
			periods[r] = trendPeriod{key: float64(r), rows: []int{r}}
		}
		return periods, nil
	}

	col, ok := m.Column(timeItem)
	if !ok {
		return nil, fmt.Errorf("time item %s not in the response matrix", timeItem)
	}
	byKey := make(map[float64]*trendPeriod)
	for r, v := range col {
		if math.IsNaN(v) {
			continue
		}
		p, ok := byKey[v]
		if !ok {
			p = &trendPeriod{key: v}
			byKey[v] = p
		}
		p.rows = append(p.rows, r)
	}
	periods := make([]trendPeriod, 0, len(byKey))
	for _, p := range byKey {
		periods = append(periods, *p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].key < periods[j].key })
	return periods, nil
}

// AnalyzeTrends splits each dimension's period means into a first and a
// second half and labels the change. Periods come from the configured time
// item, or from row order when none is set.
func AnalyzeTrends(m *ResponseMatrix, data []dimensionData, timeItem string) (TrendResult, []Flag) {
	res := TrendResult{
		Basis:             "row_order",
		Dimensions:        map[string]DimensionTrend{},
		ImprovementAreas:  []string{},
		SuccessIndicators: []string{},
	}
	if timeItem != "" {
		res.Basis = timeItem
	}

	periods, err := trendPeriods(m, timeItem)
	if err != nil {
		res.Reason = err.Error()
		return res, []Flag{{Section: "trends", Kind: FlagStructuralMismatch, Message: res.Reason}}
	}
	res.Periods = len(periods)
	if len(periods) < 2 {
		res.Reason = "trend analysis needs at least two periods"
		return res, []Flag{{Section: "trends", Kind: FlagDegenerateInput, Message: res.Reason}}
	}

	if timeItem != "" {
		res.PeriodMeans = make(map[string][]*float64, len(data))
		for _, p := range periods {
			res.PeriodKeys = append(res.PeriodKeys, strconv.FormatFloat(p.key, 'f', -1, 64))
		}
	}

	for _, d := range data {
		var series []float64
		for _, p := range periods {
			vals := make([]float64, len(p.rows))
			for i, r := range p.rows {
				vals[i] = d.rowMeans[r]
			}
			var mean *float64
			if len(present(vals)) > 0 {
				v := Mean(vals)
				series = append(series, v)
				rounded := round2(v)
				mean = &rounded
			}
			if res.PeriodMeans != nil {
				res.PeriodMeans[d.Name] = append(res.PeriodMeans[d.Name], mean)
			}
		}
		if len(series) < 2 {
			continue
		}

		half := len(series) / 2
		first, second := round2(Mean(series[:half])), round2(Mean(series[half:]))
		dir := trendDirection(first, second)
		res.Dimensions[d.Name] = DimensionTrend{FirstHalf: first, SecondHalf: second, Direction: dir}
		switch dir {
		case TrendImproving:
			res.SuccessIndicators = append(res.SuccessIndicators, d.Name)
		case TrendDeclining:
			res.ImprovementAreas = append(res.ImprovementAreas, d.Name)
		}
	}

	if len(res.Dimensions) == 0 {
		res.Reason = "no dimension has scores in two periods"
		return res, []Flag{{Section: "trends", Kind: FlagDegenerateInput, Message: res.Reason}}
	}
	res.Available = true
	return res, nil
}
