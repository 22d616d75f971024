package analysis

import (
	"fmt"
	"math"
)

const minItemsForContent = 3

// AverageVarianceExtracted is the mean squared item loading.
func AverageVarianceExtracted(cols [][]float64) float64 {
	ls := loadings(cols)
	if len(ls) == 0 {
		return 0
	}
	var sum float64
	for _, l := range ls {
		sum += l * l
	}
	return sum / float64(len(ls))
}

func assessValidity(m *ResponseMatrix, s *DimensionStructure, data []dimensionData, cfg Config) (ValidityResult, []string, []Flag) {
	var flags []Flag
	var recs []string

	res := ValidityResult{
		Content:    contentValidity(m, s),
		Convergent: make(map[string]ConvergentValidity, len(data)),
	}

	ave := make(map[string]float64, len(data))
	for _, d := range data {
		v := AverageVarianceExtracted(d.cols)
		ave[d.Name] = v
		res.Convergent[d.Name] = ConvergentValidity{AVE: round3(v), Acceptable: v >= cfg.AVEThreshold}
	}

	res.Discriminant = discriminantValidity(data, ave, cfg)

	construct, reason := constructValidity(m, data)
	res.Construct = construct
	if !construct.Available {
		flags = append(flags, Flag{Section: "validity.construct", Kind: FlagDegenerateInput, Message: reason})
	} else if !construct.ConstructValid {
		recs = append(recs, fmt.Sprintf("Review dimension structure: %d components with eigenvalue above 1 for %d theoretical dimensions",
			construct.KaiserComponents, construct.TheoreticalDimensions))
	}
	return res, recs, flags
}

func contentValidity(m *ResponseMatrix, s *DimensionStructure) ContentValidity {
	cv := ContentValidity{
		Dimensions:        s.Len(),
		Items:             len(m.Items()),
		ItemsPerDimension: make(map[string]int, s.Len()),
		AdequateCoverage:  true,
	}
	for _, d := range s.Dimensions() {
		cv.ItemsPerDimension[d.Name] = len(d.Items)
		if len(d.Items) < minItemsForContent {
			cv.AdequateCoverage = false
		}
	}
	return cv
}

// discriminantValidity correlates respondent dimension means for every
// unordered pair in structure order.
func discriminantValidity(data []dimensionData, ave map[string]float64, cfg Config) DiscriminantValidity {
	dv := DiscriminantValidity{Pairs: []DimensionPair{}, DiscriminantValid: true}
	for i := 0; i < len(data); i++ {
		for j := i + 1; j < len(data); j++ {
			r := Pearson(data[i].rowMeans, data[j].rowMeans)
			abs := math.Abs(r)
			pair := DimensionPair{
				First:          data[i].Name,
				Second:         data[j].Name,
				Correlation:    round3(r),
				Exceeds:        abs >= cfg.DiscriminantCeiling,
				FornellLarcker: math.Sqrt(ave[data[i].Name]) > abs && math.Sqrt(ave[data[j].Name]) > abs,
			}
			if pair.Exceeds {
				dv.DiscriminantValid = false
			}
			dv.Pairs = append(dv.Pairs, pair)
		}
	}
	return dv
}

// constructValidity eigen-decomposes the correlation matrix of all distinct
// scored items over complete cases.
func constructValidity(m *ResponseMatrix, data []dimensionData) (ConstructValidity, string) {
	n := len(data)
	cv := ConstructValidity{TheoreticalDimensions: n, Eigenvalues: []float64{}, ExplainedRatios: []float64{}}

	items := distinctItems(dimensionsOf(data))
	if len(items) < 2 {
		cv.Reason = "construct validity needs at least 2 items"
		return cv, cv.Reason
	}
	cols, _ := m.Columns(items)
	cc := CompleteCases(cols)
	if rowCount(cc) < 3 {
		cv.Reason = "construct validity needs at least 3 complete respondents"
		return cv, cv.Reason
	}

	eig, ok := eigenvaluesDesc(CorrelationMatrix(Standardize(cc)))
	if !ok {
		cv.Reason = "eigen decomposition did not converge"
		return cv, cv.Reason
	}

	var total float64
	for _, v := range eig {
		total += math.Max(v, 0)
	}

	keep := n + 2
	if keep > len(eig) {
		keep = len(eig)
	}
	var explained float64
	for i, v := range eig {
		ratio := 0.0
		if total > 0 {
			ratio = math.Max(v, 0) / total
		}
		if i < keep {
			cv.Eigenvalues = append(cv.Eigenvalues, round3(v))
			cv.ExplainedRatios = append(cv.ExplainedRatios, round3(ratio))
		}
		if i < n {
			explained += ratio
		}
		if v > 1 {
			cv.KaiserComponents++
		}
	}

	cv.Available = true
	cv.TotalVarianceExplained = round2(explained * 100)
	diff := cv.KaiserComponents - n
	cv.ConstructValid = diff >= -1 && diff <= 1
	return cv, ""
}

func dimensionsOf(data []dimensionData) []Dimension {
	out := make([]Dimension, len(data))
	for i, d := range data {
		out[i] = d.Dimension
	}
	return out
}
