package analysis

import (
	"math"
	"sort"
	"strings"
)

// MethodologyKind names a scoring framework.
type MethodologyKind string

const (
	MethodologyAFNOR    MethodologyKind = "afnor"
	MethodologyISO10010 MethodologyKind = "iso10010"
	MethodologyEFQM     MethodologyKind = "efqm"
	MethodologyBaldrige MethodologyKind = "baldrige"
	MethodologyPDA      MethodologyKind = "pda"
)

const LevelDeveloping MaturityLevel = "Developing"

// MethodologyInput is what every framework scores from. Dimension means are
// on the item scale.
type MethodologyInput struct {
	Dimensions []DimensionMean
	NPQS       NPQSResult
	Weights    map[string]float64
	Config     Config
}

type MethodologyComponent struct {
	Score         float64       `json:"score"`
	Weight        float64       `json:"weight,omitempty"`
	WeightedScore float64       `json:"weighted_score,omitempty"`
	Level         MaturityLevel `json:"level,omitempty"`
}

type MethodologyScore struct {
	Kind          MethodologyKind                 `json:"kind"`
	Available     bool                            `json:"available"`
	Reason        string                          `json:"reason,omitempty"`
	Score         float64                         `json:"score"`
	Scale         string                          `json:"scale"`
	Level         MaturityLevel                   `json:"level,omitempty"`
	Components    map[string]MethodologyComponent `json:"components,omitempty"`
	CriticalAreas []string                        `json:"critical_areas,omitempty"`
}

// Methodology scores a survey under one framework.
type Methodology interface {
	Kind() MethodologyKind
	Score(in MethodologyInput) (MethodologyScore, error)
}

var methodologyKinds = map[MethodologyKind]func() Methodology{
	MethodologyAFNOR:    func() Methodology { return afnorMethodology{} },
	MethodologyISO10010: func() Methodology { return isoMethodology{} },
	MethodologyEFQM:     func() Methodology { return efqmMethodology{} },
	MethodologyBaldrige: func() Methodology { return baldrigeMethodology{} },
	MethodologyPDA:      func() Methodology { return pdaMethodology{} },
}

// NewMethodology returns the framework registered for kind.
func NewMethodology(kind MethodologyKind) (Methodology, bool) {
	ctor, ok := methodologyKinds[kind]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// canonical lowercases a dimension name and joins words with underscores so
// "Process Approach" matches "process_approach".
func canonical(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// weightedComponents scores each present framework criterion. It returns the
// weighted sum and the total weight used.
func weightedComponents(dims []DimensionMean, weights map[string]float64, transform func(float64) float64) (map[string]MethodologyComponent, float64, float64) {
	byName := make(map[string]DimensionMean, len(dims))
	for _, d := range dims {
		byName[canonical(d.Name)] = d
	}
	comps := make(map[string]MethodologyComponent)
	var sum, total float64
	for criterion, w := range weights {
		d, ok := byName[criterion]
		if !ok {
			continue
		}
		v := transform(d.Mean)
		comps[d.Name] = MethodologyComponent{Score: round2(v), Weight: w, WeightedScore: round2(v * w)}
		sum += v * w
		total += w
	}
	return comps, sum, total
}

func identity(x float64) float64 { return x }

type afnorMethodology struct{}

func (afnorMethodology) Kind() MethodologyKind { return MethodologyAFNOR }

func (afnorMethodology) Score(in MethodologyInput) (MethodologyScore, error) {
	out := MethodologyScore{Kind: MethodologyAFNOR, Scale: "-100..100"}
	if !in.NPQS.Available {
		out.Reason = "no recommendation responses"
		return out, nil
	}
	out.Available = true
	out.Score = in.NPQS.NPQS
	return out, nil
}

var isoWeights = map[string]float64{
	"leadership":           0.25,
	"engagement":           0.20,
	"process_approach":     0.20,
	"customer_focus":       0.15,
	"learning_development": 0.20,
}

type isoMethodology struct{}

func (isoMethodology) Kind() MethodologyKind { return MethodologyISO10010 }

// Score is the weighted Likert maturity. Caller weights win; without them the
// framework weights apply, or equal weights when no framework dimension is
// present.
func (isoMethodology) Score(in MethodologyInput) (MethodologyScore, error) {
	out := MethodologyScore{Kind: MethodologyISO10010, Scale: "1..5"}
	if len(in.Dimensions) == 0 {
		out.Reason = "no scored dimensions"
		return out, nil
	}

	weights := in.Weights
	if weights == nil {
		weights = make(map[string]float64)
		for _, d := range in.Dimensions {
			if w, ok := isoWeights[canonical(d.Name)]; ok {
				weights[d.Name] = w
			}
		}
		if len(weights) == 0 {
			weights = nil
		}
	}

	toFive := func(x float64) float64 { return x * 5 / in.Config.ScaleMax }
	scaled := make([]DimensionMean, len(in.Dimensions))
	for i, d := range in.Dimensions {
		scaled[i] = DimensionMean{Name: d.Name, Mean: toFive(d.Mean), StdDev: toFive(d.StdDev)}
	}
	res, err := NewMaturityScorer(LikertMaturityTable).WeightedMaturity(scaled, weights)
	if err != nil {
		return out, err
	}

	out.Available = true
	out.Score = res.Overall
	out.Level = res.OverallLevel
	out.Components = make(map[string]MethodologyComponent, len(res.Dimensions))
	for name, d := range res.Dimensions {
		out.Components[name] = MethodologyComponent{Score: d.Score, Weight: d.Weight, WeightedScore: d.WeightedScore, Level: d.Level}
	}
	return out, nil
}

var radarWeights = map[string]float64{
	"results":    0.25,
	"approach":   0.25,
	"deployment": 0.25,
	"assessment": 0.25,
}

type efqmMethodology struct{}

func (efqmMethodology) Kind() MethodologyKind { return MethodologyEFQM }

func (efqmMethodology) Score(in MethodologyInput) (MethodologyScore, error) {
	out := MethodologyScore{Kind: MethodologyEFQM, Scale: "item scale"}
	comps, sum, total := weightedComponents(in.Dimensions, radarWeights, identity)
	if total == 0 {
		out.Reason = "no RADAR criteria among scored dimensions"
		return out, nil
	}
	out.Available = true
	out.Score = round2(sum)
	out.Components = comps
	return out, nil
}

var baldrigeWeights = map[string]float64{
	"leadership":  0.12,
	"strategy":    0.08,
	"customers":   0.12,
	"measurement": 0.09,
	"workforce":   0.12,
	"operations":  0.12,
	"results":     0.45,
}

type baldrigeMethodology struct{}

func (baldrigeMethodology) Kind() MethodologyKind { return MethodologyBaldrige }

// Score projects the present categories onto the 1000-point scale.
func (baldrigeMethodology) Score(in MethodologyInput) (MethodologyScore, error) {
	out := MethodologyScore{Kind: MethodologyBaldrige, Scale: "0..1000"}
	points := func(x float64) float64 { return 1000 * x / in.Config.ScaleMax }
	comps, sum, total := weightedComponents(in.Dimensions, baldrigeWeights, points)
	if total == 0 {
		out.Reason = "no Baldrige categories among scored dimensions"
		return out, nil
	}
	out.Available = true
	out.Score = round2(sum / total)
	out.Components = comps
	return out, nil
}

// PDALevels are the PDA maturity levels from lowest to highest.
var PDALevels = []MaturityLevel{LevelInitial, LevelDeveloping, LevelDefined, LevelManaged, LevelOptimizing}

const pdaCriticalBelow = 60

func pdaLevel(score float64) MaturityLevel {
	idx := int(clip(math.Ceil(score/20), 1, 5))
	return PDALevels[idx-1]
}

type pdaMethodology struct{}

func (pdaMethodology) Kind() MethodologyKind { return MethodologyPDA }

// Score grades every dimension as a 0-100 domain and lists domains below 60.
func (pdaMethodology) Score(in MethodologyInput) (MethodologyScore, error) {
	out := MethodologyScore{Kind: MethodologyPDA, Scale: "0..100"}
	if len(in.Dimensions) == 0 {
		out.Reason = "no scored dimensions"
		return out, nil
	}

	out.Components = make(map[string]MethodologyComponent, len(in.Dimensions))
	var sum float64
	for _, d := range in.Dimensions {
		score := d.Mean * 100 / in.Config.ScaleMax
		sum += score
		out.Components[d.Name] = MethodologyComponent{Score: round2(score), Level: pdaLevel(score)}
		if score < pdaCriticalBelow {
			out.CriticalAreas = append(out.CriticalAreas, d.Name)
		}
	}
	sort.Strings(out.CriticalAreas)

	overall := sum / float64(len(in.Dimensions))
	out.Available = true
	out.Score = round2(overall)
	out.Level = pdaLevel(overall)
	return out, nil
}
