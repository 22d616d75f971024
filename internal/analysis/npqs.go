package analysis

import (
	"math"
	"strings"
)

const (
	promoterCut  = 9
	detractorCut = 6
)

// CalculateNPQS classifies a 0-10 recommendation column. Passives are every
// valid response that is neither promoter nor detractor, so the three classes
// always partition the valid set.
func CalculateNPQS(column []float64) NPQSResult {
	var promoters, detractors, valid int
	for _, v := range column {
		if math.IsNaN(v) {
			continue
		}
		valid++
		switch {
		case v >= promoterCut:
			promoters++
		case v <= detractorCut:
			detractors++
		}
	}
	if valid == 0 {
		return NPQSResult{Reason: "no valid responses"}
	}

	passives := valid - promoters - detractors
	pct := func(n int) float64 { return float64(n) / float64(valid) * 100 }
	return NPQSResult{
		Available:      true,
		NPQS:           round2(pct(promoters) - pct(detractors)),
		Promoters:      promoters,
		Passives:       passives,
		Detractors:     detractors,
		PromoterPct:    round2(pct(promoters)),
		PassivePct:     round2(pct(passives)),
		DetractorPct:   round2(pct(detractors)),
		ValidResponses: valid,
	}
}

// recommendationItem picks the configured item, else the last column whose ID
// mentions "recommend".
func recommendationItem(m *ResponseMatrix, configured string) (string, bool) {
	if configured != "" {
		return configured, m.Has(configured)
	}
	items := m.Items()
	for i := len(items) - 1; i >= 0; i-- {
		if strings.Contains(strings.ToLower(items[i]), "recommend") {
			return items[i], true
		}
	}
	return "", false
}

func scoreNPQS(m *ResponseMatrix, cfg Config) (NPQSResult, []Flag) {
	item, ok := recommendationItem(m, cfg.RecommendationItem)
	if !ok {
		reason := "no recommendation item in the response matrix"
		if item != "" {
			reason = "recommendation item " + item + " not in the response matrix"
		}
		return NPQSResult{Item: item, Reason: reason}, []Flag{{Section: "npqs", Kind: FlagStructuralMismatch, Message: reason}}
	}

	col, _ := m.Column(item)
	res := CalculateNPQS(col)
	res.Item = item
	if !res.Available {
		return res, []Flag{{Section: "npqs", Kind: FlagDegenerateInput, Message: "recommendation item " + item + " has no valid responses"}}
	}
	return res, nil
}
