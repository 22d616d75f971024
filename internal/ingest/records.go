package ingest

import (
	"fmt"
	"math"
	"sort"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// FromRecords builds a response matrix from keyed rows. Every record must carry
// the same keys. When items is empty the column order is the sorted key set of
// the first record.
func FromRecords(items []string, records []map[string]*float64) (*analysis.ResponseMatrix, error) {
	if len(records) == 0 {
		return nil, apperrors.NewUpstreamDataError("responses contain no records", nil)
	}

	if len(items) == 0 {
		for k := range records[0] {
			items = append(items, k)
		}
		sort.Strings(items)
	}

	rows := make([][]float64, len(records))
	for r, rec := range records {
		if len(rec) != len(items) {
			return nil, apperrors.NewUpstreamDataError(
				fmt.Sprintf("record has %d keys, expected %d", len(rec), len(items)),
				map[string]interface{}{"row": r},
			)
		}
		row := make([]float64, len(items))
		for c, id := range items {
			v, ok := rec[id]
			if !ok {
				return nil, apperrors.NewUpstreamDataError(
					fmt.Sprintf("record is missing item %s", id),
					map[string]interface{}{"row": r, "item": id},
				)
			}
			if v == nil {
				row[c] = math.NaN()
				continue
			}
			row[c] = *v
		}
		rows[r] = row
	}
	return analysis.NewResponseMatrix(items, rows)
}
