package analysis

import (
	"fmt"
	"math"
)

const (
	minItemTotalCorrelation = 0.3
	maxItemSkew             = 2
)

// analyzeItems describes every matrix item and flags items that correlate
// weakly with the rest of the instrument or are heavily skewed.
func analyzeItems(m *ResponseMatrix) (ItemAnalysisResult, []Flag) {
	items := m.Items()
	cols, _ := m.Columns(items)
	res := ItemAnalysisResult{
		Items:       make(map[string]ItemStatistics, len(items)),
		Problematic: []string{},
	}

	var flags []Flag
	for i, id := range items {
		st := Describe(cols[i])
		entry := ItemStatistics{
			ColumnStats: roundStats(st),
			Normal:      math.Abs(st.Skewness) < 1 && math.Abs(st.Kurtosis) < 1,
		}
		if m.Rows() > 0 {
			entry.MissingPct = round2(float64(st.Missing) / float64(m.Rows()) * 100)
		}
		if st.Count == 0 {
			flags = append(flags, Flag{Section: "item_analysis", Kind: FlagDegenerateInput, Message: fmt.Sprintf("item %s has no responses", id)})
		}

		if len(items) > 1 {
			rest := make([][]float64, 0, len(cols)-1)
			rest = append(rest, cols[:i]...)
			rest = append(rest, cols[i+1:]...)
			itc := Pearson(cols[i], RowSums(rest))
			rounded := round3(itc)
			entry.ItemTotalCorrelation = &rounded
			if itc < minItemTotalCorrelation {
				res.Problematic = append(res.Problematic, id)
				res.Items[id] = entry
				continue
			}
		}
		if math.Abs(st.Skewness) > maxItemSkew {
			res.Problematic = append(res.Problematic, id)
		}
		res.Items[id] = entry
	}
	return res, flags
}

func roundStats(st ColumnStats) ColumnStats {
	return ColumnStats{
		Count:    st.Count,
		Missing:  st.Missing,
		Mean:     round2(st.Mean),
		StdDev:   round2(st.StdDev),
		Skewness: round3(st.Skewness),
		Kurtosis: round3(st.Kurtosis),
		Min:      round2(st.Min),
		Max:      round2(st.Max),
	}
}
