package analysis

import (
	"sort"
	"strconv"
	"strings"
)

// demographicMarkers are the substrings that mark a column as a respondent
// attribute rather than a survey item.
var demographicMarkers = []string{"age", "department", "role", "experience", "site"}

func isDemographic(item string) bool {
	lower := strings.ToLower(item)
	for _, marker := range demographicMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// SummarizeDemographics counts the coded values of every demographic column
// that is not in exclude. Missing values are not counted.
func SummarizeDemographics(m *ResponseMatrix, exclude []string) DemographicsResult {
	skip := make(map[string]bool, len(exclude))
	for _, item := range exclude {
		skip[item] = true
	}

	res := DemographicsResult{Columns: []string{}, Counts: map[string]map[string]int{}}
	for _, item := range m.Items() {
		if skip[item] || !isDemographic(item) {
			continue
		}
		col, _ := m.Column(item)
		counts := make(map[string]int)
		for _, v := range present(col) {
			counts[strconv.FormatFloat(v, 'f', -1, 64)]++
		}
		res.Columns = append(res.Columns, item)
		res.Counts[item] = counts
	}
	sort.Strings(res.Columns)
	return res
}
