package analysis

const (
	minRecommendedSample = 200
	recommendedPerItem   = 10
)

// AssessSampleAdequacy applies the 5:1, 10:1 and Kline 20:1 respondent to item
// rules. It never fails; p <= 0 is inadequate on every rule.
func AssessSampleAdequacy(n, p int) SampleAdequacy {
	sa := SampleAdequacy{Responses: n, Items: p}
	if p <= 0 {
		sa.RecommendedMinimum = minRecommendedSample
		return sa
	}
	sa.Ratio = round2(float64(n) / float64(p))
	sa.Adequate5to1 = n >= 5*p
	sa.Adequate10to1 = n >= 10*p
	sa.KlineAdequate = n >= 20*p
	sa.RecommendedMinimum = max(minRecommendedSample, recommendedPerItem*p)
	return sa
}
