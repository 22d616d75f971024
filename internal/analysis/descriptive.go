package analysis

import "math"

// describeResponses reports the response count, the share of fully answered
// rows and per-item statistics grouped by dimension.
func describeResponses(m *ResponseMatrix, data []dimensionData) DescriptiveResult {
	res := DescriptiveResult{
		Responses:      m.Rows(),
		ItemStatistics: make(map[string]map[string]ColumnStats, len(data)),
	}

	if m.Rows() > 0 {
		complete := 0
		for r := 0; r < m.Rows(); r++ {
			full := true
			for _, v := range m.Row(r) {
				if math.IsNaN(v) {
					full = false
					break
				}
			}
			if full {
				complete++
			}
		}
		res.CompletionRate = round2(float64(complete) / float64(m.Rows()) * 100)
	}

	for _, d := range data {
		items := make(map[string]ColumnStats, len(d.Items))
		for i, id := range d.Items {
			items[id] = roundStats(Describe(d.cols[i]))
		}
		res.ItemStatistics[d.Name] = items
	}
	return res
}
