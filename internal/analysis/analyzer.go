package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

const (
	recommendationMin = 0
	recommendationMax = 10
)

// Input is one analysis request. Reference and Weights are optional.
type Input struct {
	Matrix    *ResponseMatrix
	Structure *DimensionStructure
	Reference *Reference
	Weights   map[string]float64
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for run summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// Analyzer orchestrates the full scoring and validation pipeline.
type Analyzer struct {
	cfg         Config
	methodology Methodology
	logger      *slog.Logger
	now         func() time.Time
}

// NewAnalyzer validates cfg and builds an analyzer.
func NewAnalyzer(cfg Config, opts ...Option) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	method, _ := NewMethodology(cfg.Methodology)
	a := &Analyzer{
		cfg:         cfg,
		methodology: method,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() Config { return a.cfg }

type section struct {
	name string
	run  func(ctx context.Context) ([]Flag, error)
}

// Analyze scores and validates one response matrix against a dimension
// structure. Malformed input, invalid weights and a structure with no
// scorable dimension are fatal; everything else degrades to flagged
// sentinels.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Report, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Matrix == nil {
		return nil, apperrors.NewUpstreamDataError("response matrix is required", nil)
	}
	if in.Structure == nil || in.Structure.Len() == 0 {
		return nil, apperrors.NewUpstreamDataError("dimension structure is required", nil)
	}
	if in.Reference != nil {
		if err := in.Reference.Validate(); err != nil {
			return nil, err
		}
	}

	dims, skipped := in.Structure.Resolve(in.Matrix)
	if len(dims) == 0 {
		details := make(map[string]interface{}, len(skipped))
		for _, s := range skipped {
			details[s.Name] = strings.Join(s.MissingItems, ",")
		}
		return nil, apperrors.NewStructuralMismatchError("no dimension of the structure is present in the response matrix", details)
	}

	scored := distinctItems(dims)
	if err := in.Matrix.ValidateScale(scored, a.cfg.ScaleMin, a.cfg.ScaleMax); err != nil {
		return nil, err
	}
	if item, ok := recommendationItem(in.Matrix, a.cfg.RecommendationItem); ok && !contains(scored, item) {
		if err := in.Matrix.ValidateScale([]string{item}, recommendationMin, recommendationMax); err != nil {
			return nil, err
		}
	}
	if err := validateWeights(in.Weights, dims); err != nil {
		return nil, err
	}

	data := collectDimensions(in.Matrix, dims)
	names := dimensionNames(data)

	report := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: a.now().UTC(),
		Respondents: in.Matrix.Rows(),
		Items:       len(in.Matrix.Items()),
		Coverage:    Coverage{Scored: names, Skipped: skipped},
	}
	if report.Coverage.Skipped == nil {
		report.Coverage.Skipped = []SkippedDimension{}
	}

	var headFlags []Flag
	for _, s := range skipped {
		headFlags = append(headFlags, Flag{
			Section: "coverage",
			Kind:    FlagStructuralMismatch,
			Message: fmt.Sprintf("dimension %s skipped, missing items: %s", s.Name, strings.Join(s.MissingItems, ", ")),
		})
	}

	npqs, npqsFlags := scoreNPQS(in.Matrix, a.cfg)
	report.NPQS = npqs
	headFlags = append(headFlags, npqsFlags...)

	means := dimensionMeans(data)
	var validityRecs []string

	sections := []section{
		{"descriptive", func(context.Context) ([]Flag, error) {
			report.Descriptive = describeResponses(in.Matrix, data)
			return nil, nil
		}},
		{"dimension_scores", func(context.Context) ([]Flag, error) {
			var flags []Flag
			report.Dimensions, flags = scoreDimensions(data, a.cfg)
			return flags, nil
		}},
		{"maturity", func(context.Context) ([]Flag, error) {
			res, err := a.scoreMaturity(data, means, in.Weights)
			report.Maturity = res
			return nil, err
		}},
		{"methodology", func(context.Context) ([]Flag, error) {
			res, err := a.methodology.Score(MethodologyInput{Dimensions: means, NPQS: npqs, Weights: in.Weights, Config: a.cfg})
			report.Methodology = res
			if err != nil {
				return nil, err
			}
			if !res.Available {
				return []Flag{{Section: "methodology", Kind: FlagStructuralMismatch, Message: res.Reason}}, nil
			}
			return nil, nil
		}},
		{"reliability", func(context.Context) ([]Flag, error) {
			var flags []Flag
			report.Validation.Reliability, flags = assessReliability(data, a.cfg)
			return flags, nil
		}},
		{"validity", func(context.Context) ([]Flag, error) {
			var flags []Flag
			report.Validation.Validity, validityRecs, flags = assessValidity(in.Matrix, in.Structure, data, a.cfg)
			return flags, nil
		}},
		{"dimensionality", func(context.Context) ([]Flag, error) {
			var flags []Flag
			report.Validation.Dimensionality, flags = assessDimensionality(in.Matrix, data, a.cfg)
			return flags, nil
		}},
		{"item_analysis", func(context.Context) ([]Flag, error) {
			var flags []Flag
			report.Validation.ItemAnalysis, flags = analyzeItems(in.Matrix)
			return flags, nil
		}},
		{"sample_adequacy", func(context.Context) ([]Flag, error) {
			report.Validation.SampleAdequacy = AssessSampleAdequacy(in.Matrix.Rows(), len(in.Matrix.Items()))
			return nil, nil
		}},
		{"correlations", func(context.Context) ([]Flag, error) {
			report.Correlations = analyzeCorrelations(data, a.cfg)
			return nil, nil
		}},
		{"trends", func(context.Context) ([]Flag, error) {
			var flags []Flag
			report.Trends, flags = AnalyzeTrends(in.Matrix, data, a.cfg.TimeItem)
			return flags, nil
		}},
		{"demographics", func(context.Context) ([]Flag, error) {
			exclude := append([]string{a.cfg.TimeItem}, scored...)
			if item, ok := recommendationItem(in.Matrix, a.cfg.RecommendationItem); ok {
				exclude = append(exclude, item)
			}
			report.Demographics = SummarizeDemographics(in.Matrix, exclude)
			return nil, nil
		}},
		{"clustering", func(context.Context) ([]Flag, error) {
			report.Clustering = Cluster(respondentVectors(data), names, a.cfg)
			if !report.Clustering.Available {
				return []Flag{{Section: "clustering", Kind: FlagDegenerateInput, Message: report.Clustering.Reason}}, nil
			}
			return nil, nil
		}},
	}

	sectionFlags := make([][]Flag, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			flags, err := s.run(gctx)
			if err != nil {
				return err
			}
			sectionFlags[i] = flags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Benchmark = Compare(ownMetrics(report), in.Reference)

	report.Flags = append([]Flag{}, headFlags...)
	for _, flags := range sectionFlags {
		report.Flags = append(report.Flags, flags...)
	}
	report.Validation.Recommendations = recommendations(report, data, validityRecs, a.cfg)

	a.logger.Info("Analysis Completed",
		"report_id", report.ID,
		"respondents", report.Respondents,
		"scored_dimensions", len(names),
		"skipped_dimensions", len(skipped),
		"methodology", a.cfg.Methodology,
		"flags", len(report.Flags),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

func (a *Analyzer) scoreMaturity(data []dimensionData, means []DimensionMean, weights map[string]float64) (MaturityResult, error) {
	scorer := NewMaturityScorer(LikertMaturityTable)
	toFive := 5 / a.cfg.ScaleMax

	scaled := make([]DimensionMean, len(means))
	for i, d := range means {
		scaled[i] = DimensionMean{Name: d.Name, Mean: d.Mean * toFive, StdDev: d.StdDev * toFive}
	}
	res, err := scorer.WeightedMaturity(scaled, weights)
	if err != nil {
		return MaturityResult{}, err
	}

	rows := make(map[string][]float64, len(data))
	for _, d := range data {
		vals := make([]float64, len(d.rowMeans))
		for i, v := range d.rowMeans {
			vals[i] = v * toFive
		}
		rows[d.Name] = vals
	}
	res.Distribution = scorer.Distribution(rows)
	return res, nil
}

func validateWeights(weights map[string]float64, dims []Dimension) error {
	if weights == nil {
		return nil
	}
	var total float64
	for name, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return apperrors.NewConfigurationError(fmt.Sprintf("weight for %q must be finite and non-negative, got %v", name, w), nil)
		}
	}
	for _, d := range dims {
		total += weights[d.Name]
	}
	if total <= 0 {
		return apperrors.NewConfigurationError("total maturity weight over scored dimensions must be positive", nil)
	}
	return nil
}

func dimensionMeans(data []dimensionData) []DimensionMean {
	out := make([]DimensionMean, len(data))
	for i, d := range data {
		out[i] = DimensionMean{Name: d.Name, Mean: Mean(d.rowMeans), StdDev: StdDev(d.rowMeans)}
	}
	return out
}

// respondentVectors transposes per-dimension respondent means into one vector
// per respondent.
func respondentVectors(data []dimensionData) [][]float64 {
	n := 0
	if len(data) > 0 {
		n = len(data[0].rowMeans)
	}
	out := make([][]float64, n)
	for r := range out {
		out[r] = make([]float64, len(data))
		for j, d := range data {
			out[r][j] = d.rowMeans[r]
		}
	}
	return out
}

// ownMetrics collects the benchmarkable scores of a report.
func ownMetrics(r *Report) map[string]float64 {
	own := make(map[string]float64, len(r.Dimensions)+2)
	if r.NPQS.Available {
		own["npqs"] = r.NPQS.NPQS
	}
	if r.Maturity.Available {
		own["maturity"] = r.Maturity.Overall
	}
	for _, d := range r.Dimensions {
		if d.Respondents > 0 {
			own[canonical(d.Name)] = d.ItemMean
		}
	}
	return own
}

func recommendations(r *Report, data []dimensionData, validityRecs []string, cfg Config) []string {
	recs := []string{}
	v := r.Validation
	if !v.Reliability.Overall {
		recs = append(recs, "Improve reliability by adding items or refining existing ones")
	}
	for _, d := range data {
		if c, ok := v.Validity.Convergent[d.Name]; ok && !c.Acceptable {
			recs = append(recs, "Improve convergent validity for dimension: "+d.Name)
		}
	}
	for _, p := range v.Validity.Discriminant.Pairs {
		if p.Exceeds {
			recs = append(recs, fmt.Sprintf("Dimensions %s and %s correlate at %.2f or more and may measure the same construct",
				p.First, p.Second, cfg.DiscriminantCeiling))
		}
	}
	if !v.SampleAdequacy.Adequate10to1 {
		recs = append(recs, fmt.Sprintf("Increase sample size to at least %d responses", v.SampleAdequacy.RecommendedMinimum))
	}
	if !v.Dimensionality.Adequate {
		recs = append(recs, "Review dimension structure based on factor analysis")
	}
	recs = append(recs, validityRecs...)
	if len(v.ItemAnalysis.Problematic) > 0 {
		recs = append(recs, "Review problematic items: "+strings.Join(v.ItemAnalysis.Problematic, ", "))
	}
	return recs
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
