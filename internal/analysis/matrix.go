package analysis

import (
	"fmt"
	"math"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// ResponseMatrix is an immutable respondents x items table. Missing responses
// are stored as NaN.
type ResponseMatrix struct {
	items  []string
	index  map[string]int
	values []float64 // row-major
	rows   int
}

// NewResponseMatrix validates and copies rows into a matrix. Every row must
// carry one value per item.
func NewResponseMatrix(items []string, rows [][]float64) (*ResponseMatrix, error) {
	if len(items) == 0 {
		return nil, apperrors.NewUpstreamDataError("response matrix has no items", nil)
	}

	index := make(map[string]int, len(items))
	for i, id := range items {
		if id == "" {
			return nil, apperrors.NewUpstreamDataError("empty item identifier", map[string]interface{}{"column": i})
		}
		if _, dup := index[id]; dup {
			return nil, apperrors.NewUpstreamDataError("duplicate item identifier", map[string]interface{}{"item": id})
		}
		index[id] = i
	}

	values := make([]float64, 0, len(rows)*len(items))
	for r, row := range rows {
		if len(row) != len(items) {
			return nil, apperrors.NewUpstreamDataError("ragged response row", map[string]interface{}{
				"row":      r,
				"expected": len(items),
				"got":      len(row),
			})
		}
		for c, v := range row {
			if math.IsInf(v, 0) {
				return nil, apperrors.NewUpstreamDataError("non-finite response", map[string]interface{}{
					"row":  r,
					"item": items[c],
				})
			}
		}
		values = append(values, row...)
	}

	return &ResponseMatrix{
		items:  append([]string(nil), items...),
		index:  index,
		values: values,
		rows:   len(rows),
	}, nil
}

// Rows returns the number of respondents.
func (m *ResponseMatrix) Rows() int { return m.rows }

// Items returns a copy of the item identifiers in column order.
func (m *ResponseMatrix) Items() []string { return append([]string(nil), m.items...) }

// Has reports whether the matrix carries the item.
func (m *ResponseMatrix) Has(item string) bool {
	_, ok := m.index[item]
	return ok
}

// Column returns a copy of one item's responses.
func (m *ResponseMatrix) Column(item string) ([]float64, bool) {
	c, ok := m.index[item]
	if !ok {
		return nil, false
	}
	out := make([]float64, m.rows)
	width := len(m.items)
	for r := 0; r < m.rows; r++ {
		out[r] = m.values[r*width+c]
	}
	return out, true
}

// Columns returns copies of the listed items in order. The second result lists
// the items the matrix does not carry.
func (m *ResponseMatrix) Columns(items []string) ([][]float64, []string) {
	cols := make([][]float64, 0, len(items))
	var missing []string
	for _, id := range items {
		col, ok := m.Column(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		cols = append(cols, col)
	}
	return cols, missing
}

// Row returns a copy of one respondent's responses in column order.
func (m *ResponseMatrix) Row(r int) []float64 {
	width := len(m.items)
	return append([]float64(nil), m.values[r*width:(r+1)*width]...)
}

// ValidateScale rejects responses outside [lo, hi] for the given items. A nil
// item list checks every column.
func (m *ResponseMatrix) ValidateScale(items []string, lo, hi float64) error {
	if items == nil {
		items = m.items
	}
	for _, id := range items {
		col, ok := m.Column(id)
		if !ok {
			continue
		}
		for r, v := range col {
			if math.IsNaN(v) {
				continue
			}
			if v < lo || v > hi {
				return apperrors.NewUpstreamDataError(
					fmt.Sprintf("response %v outside scale [%v, %v]", v, lo, hi),
					map[string]interface{}{"row": r, "item": id},
				)
			}
		}
	}
	return nil
}
