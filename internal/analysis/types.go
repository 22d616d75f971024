package analysis

import "time"

// FlagKind classifies a low-confidence condition recorded in a report.
type FlagKind string

const (
	FlagDegenerateInput    FlagKind = "degenerate_input"
	FlagStructuralMismatch FlagKind = "structural_mismatch"
	FlagApproximation      FlagKind = "approximation"
)

// Flag marks a section (or a field within it) whose value fell back to a
// sentinel or was skipped.
type Flag struct {
	Section string   `json:"section"`
	Kind    FlagKind `json:"kind"`
	Message string   `json:"message"`
}

// SkippedDimension names a dimension that could not be scored and the items
// it was missing.
type SkippedDimension struct {
	Name         string   `json:"name"`
	MissingItems []string `json:"missing_items"`
}

// Coverage summarizes which dimensions of the structure were scored.
type Coverage struct {
	Scored  []string           `json:"scored"`
	Skipped []SkippedDimension `json:"skipped"`
}

// ColumnStats holds the descriptive statistics of one column.
type ColumnStats struct {
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

type DimensionScore struct {
	Name        string        `json:"name"`
	Respondents int           `json:"respondents"`
	Mean        float64       `json:"mean_score"`
	StdDev      float64       `json:"std_score"`
	Median      float64       `json:"median_score"`
	P25         float64       `json:"percentile_25"`
	P75         float64       `json:"percentile_75"`
	ItemMean    float64       `json:"item_scale_mean"`
	Level       MaturityLevel `json:"maturity_level"`
}

type NPQSResult struct {
	Available      bool    `json:"available"`
	Item           string  `json:"item,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	NPQS           float64 `json:"npqs"`
	Promoters      int     `json:"promoters"`
	Passives       int     `json:"passives"`
	Detractors     int     `json:"detractors"`
	PromoterPct    float64 `json:"promoter_pct"`
	PassivePct     float64 `json:"passive_pct"`
	DetractorPct   float64 `json:"detractor_pct"`
	ValidResponses int     `json:"valid_responses"`
}

type DimensionMaturity struct {
	Score         float64       `json:"score"`
	Weight        float64       `json:"weight"`
	WeightedScore float64       `json:"weighted_score"`
	Level         MaturityLevel `json:"level"`
	StdDev        float64       `json:"std"`
}

type MaturityResult struct {
	Available    bool                            `json:"available"`
	Overall      float64                         `json:"overall_maturity"`
	OverallLevel MaturityLevel                   `json:"overall_level"`
	Dimensions   map[string]DimensionMaturity    `json:"dimension_scores"`
	Distribution map[string]map[MaturityLevel]int `json:"maturity_distribution"`
}

type DimensionReliability struct {
	Alpha           float64 `json:"cronbach_alpha"`
	AlphaAcceptable bool    `json:"alpha_acceptable"`
	CR              float64 `json:"composite_reliability"`
	CRAcceptable    bool    `json:"cr_acceptable"`
	SplitHalf       float64 `json:"split_half"`
	Items           int     `json:"n_items"`
	Respondents     int     `json:"n_responses"`
}

type ReliabilityResult struct {
	Dimensions map[string]DimensionReliability `json:"dimensions"`
	Overall    bool                            `json:"overall_reliability"`
}

type ConvergentValidity struct {
	AVE        float64 `json:"ave"`
	Acceptable bool    `json:"acceptable"`
}

type DimensionPair struct {
	First          string  `json:"first"`
	Second         string  `json:"second"`
	Correlation    float64 `json:"correlation"`
	Exceeds        bool    `json:"exceeds_ceiling"`
	FornellLarcker bool    `json:"fornell_larcker"`
}

type DiscriminantValidity struct {
	Pairs             []DimensionPair `json:"inter_dimension_correlations"`
	DiscriminantValid bool            `json:"discriminant_valid"`
}

type ContentValidity struct {
	Dimensions        int            `json:"n_dimensions"`
	Items             int            `json:"n_items"`
	ItemsPerDimension map[string]int `json:"items_per_dimension"`
	AdequateCoverage  bool           `json:"adequate_coverage"`
}

type ConstructValidity struct {
	Available              bool      `json:"available"`
	Reason                 string    `json:"reason,omitempty"`
	Eigenvalues            []float64 `json:"eigenvalues"`
	ExplainedRatios        []float64 `json:"explained_variance_ratio"`
	TotalVarianceExplained float64   `json:"total_variance_explained"`
	KaiserComponents       int       `json:"kaiser_components"`
	TheoreticalDimensions  int       `json:"theoretical_dimensions"`
	ConstructValid         bool      `json:"construct_valid"`
}

type ValidityResult struct {
	Content      ContentValidity               `json:"content_validity"`
	Convergent   map[string]ConvergentValidity `json:"convergent_validity"`
	Discriminant DiscriminantValidity          `json:"discriminant_validity"`
	Construct    ConstructValidity             `json:"construct_validity"`
}

type KMOResult struct {
	Available bool    `json:"available"`
	Value     float64 `json:"value"`
	Adequate  bool    `json:"adequate"`
}

type BartlettResult struct {
	Available   bool    `json:"available"`
	ChiSquare   float64 `json:"chi_square"`
	DF          int     `json:"df"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

type DimensionalityResult struct {
	KMO                KMOResult      `json:"kmo"`
	Bartlett           BartlettResult `json:"bartlett"`
	RecommendedFactors int            `json:"recommended_factors"`
	KaiserFactors      int            `json:"kaiser_factors"`
	TheoreticalFactors int            `json:"theoretical_factors"`
	Adequate           bool           `json:"dimensionality_adequate"`
	Method             string         `json:"method"`
}

type ItemStatistics struct {
	ColumnStats
	ItemTotalCorrelation *float64 `json:"item_total_correlation,omitempty"`
	MissingPct           float64  `json:"missing_pct"`
	Normal               bool     `json:"normal"`
}

type ItemAnalysisResult struct {
	Items       map[string]ItemStatistics `json:"item_statistics"`
	Problematic []string                  `json:"problematic_items"`
}

type SampleAdequacy struct {
	Responses          int     `json:"n_responses"`
	Items              int     `json:"n_items"`
	Ratio              float64 `json:"ratio"`
	Adequate5to1       bool    `json:"adequacy_5_1"`
	Adequate10to1      bool    `json:"adequacy_10_1"`
	KlineAdequate      bool    `json:"kline_adequate"`
	RecommendedMinimum int     `json:"recommended_minimum"`
}

type ValidationReport struct {
	Reliability     ReliabilityResult    `json:"reliability"`
	Validity        ValidityResult       `json:"validity"`
	Dimensionality  DimensionalityResult `json:"dimensionality"`
	ItemAnalysis    ItemAnalysisResult   `json:"item_analysis"`
	SampleAdequacy  SampleAdequacy       `json:"sample_adequacy"`
	Recommendations []string             `json:"recommendations"`
}

type SignificantCorrelation struct {
	Variables   [2]string `json:"variables"`
	Correlation float64   `json:"correlation"`
	PValue      float64   `json:"p_value"`
	Strength    string    `json:"strength"`
}

type CorrelationResult struct {
	Matrix      map[string]map[string]float64 `json:"correlation_matrix"`
	PValues     map[string]map[string]float64 `json:"p_values"`
	Significant []SignificantCorrelation      `json:"significant_correlations"`
}

type DescriptiveResult struct {
	Responses      int                               `json:"response_rate"`
	CompletionRate float64                           `json:"completion_rate"`
	ItemStatistics map[string]map[string]ColumnStats `json:"item_statistics"`
}

type ClusterProfile struct {
	Label      string             `json:"label"`
	Size       int                `json:"size"`
	Percentage float64            `json:"percentage"`
	Centroid   map[string]float64 `json:"characteristics"`
	Strongest  string             `json:"strongest_dimension"`
	Weakest    string             `json:"weakest_dimension"`
	Profile    string             `json:"profile"`
}

type ClusterResult struct {
	Available   bool             `json:"available"`
	Reason      string           `json:"reason,omitempty"`
	K           int              `json:"n_clusters"`
	Clusters    []ClusterProfile `json:"clusters"`
	Assignments []int            `json:"assignments,omitempty"`
	Silhouette  float64          `json:"silhouette_score"`
	Inertia     map[int]float64  `json:"inertia_by_k,omitempty"`
}

type BenchmarkComparison struct {
	Metric           string   `json:"metric"`
	Score            float64  `json:"score"`
	Available        bool     `json:"available"`
	ReferenceAverage *float64 `json:"industry_average"`
	Gap              *float64 `json:"difference"`
	Percentile       *int     `json:"percentile"`
	PerformanceLabel string   `json:"performance_level"`
}

type BenchmarkResult struct {
	Available   bool                  `json:"comparison_available"`
	Sector      string                `json:"sector,omitempty"`
	Comparisons []BenchmarkComparison `json:"comparisons"`
}

type DimensionTrend struct {
	FirstHalf  float64 `json:"first_half_mean"`
	SecondHalf float64 `json:"second_half_mean"`
	Direction  string  `json:"direction"`
}

// TrendResult compares early and late periods per dimension. PeriodKeys and
// PeriodMeans are only filled when periods come from a time item; a nil mean
// marks a period without scores.
type TrendResult struct {
	Available         bool                      `json:"available"`
	Reason            string                    `json:"reason,omitempty"`
	Basis             string                    `json:"basis"`
	Periods           int                       `json:"n_periods"`
	PeriodKeys        []string                  `json:"periods,omitempty"`
	PeriodMeans       map[string][]*float64     `json:"period_means,omitempty"`
	Dimensions        map[string]DimensionTrend `json:"trend_direction"`
	ImprovementAreas  []string                  `json:"improvement_areas"`
	SuccessIndicators []string                  `json:"success_indicators"`
}

// DemographicsResult holds value counts of respondent attribute columns.
type DemographicsResult struct {
	Columns []string                  `json:"columns"`
	Counts  map[string]map[string]int `json:"counts"`
}

// Report is the bundle assembled by Analyzer.Analyze.
type Report struct {
	ID           string             `json:"id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Respondents  int                `json:"respondents"`
	Items        int                `json:"items"`
	Coverage     Coverage           `json:"coverage"`
	Descriptive  DescriptiveResult  `json:"descriptive_stats"`
	Dimensions   []DimensionScore   `json:"dimension_scores"`
	NPQS         NPQSResult         `json:"npqs"`
	Maturity     MaturityResult     `json:"maturity"`
	Methodology  MethodologyScore   `json:"methodology"`
	Validation   ValidationReport   `json:"validation"`
	Correlations CorrelationResult  `json:"correlation_analysis"`
	Clustering   ClusterResult      `json:"clustering"`
	Benchmark    BenchmarkResult    `json:"benchmark_analysis"`
	Trends       TrendResult        `json:"trends"`
	Demographics DemographicsResult `json:"demographics"`
	Flags        []Flag             `json:"flags"`
}
