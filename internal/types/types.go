package types

import (
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
)

// AnalyzeRequest represents the request structure for analyze endpoint
type AnalyzeRequest struct {
	Items      []string              `json:"items"`
	Responses  []map[string]*float64 `json:"responses" binding:"required"`
	Dimensions []analysis.Dimension  `json:"dimensions" binding:"required"`
	Weights    map[string]float64    `json:"weights,omitempty"`
	Sector     string                `json:"sector,omitempty"`
	Config     *ConfigOverrides      `json:"config,omitempty"`
}

// ConfigOverrides carries the per-request settings a client may change. Unset
// fields keep the server configuration.
type ConfigOverrides struct {
	AlphaThreshold     *float64                  `json:"alpha_threshold,omitempty"`
	AVEThreshold       *float64                  `json:"ave_threshold,omitempty"`
	ScaleMin           *float64                  `json:"scale_min,omitempty"`
	ScaleMax           *float64                  `json:"scale_max,omitempty"`
	KMOThreshold       *float64                  `json:"kmo_threshold,omitempty"`
	SignificanceLevel  *float64                  `json:"significance_level,omitempty"`
	MinClusters        *int                      `json:"min_clusters,omitempty"`
	MaxClusters        *int                      `json:"max_clusters,omitempty"`
	Seed               *int64                    `json:"seed,omitempty"`
	RecommendationItem *string                   `json:"recommendation_item,omitempty"`
	TimeItem           *string                   `json:"time_item,omitempty"`
	Methodology        *analysis.MethodologyKind `json:"methodology,omitempty"`
}

// Apply returns cfg with the overrides laid over it. The result is not
// validated.
func (o *ConfigOverrides) Apply(cfg analysis.Config) analysis.Config {
	if o == nil {
		return cfg
	}
	if o.AlphaThreshold != nil {
		cfg.AlphaThreshold = *o.AlphaThreshold
	}
	if o.AVEThreshold != nil {
		cfg.AVEThreshold = *o.AVEThreshold
	}
	if o.ScaleMin != nil {
		cfg.ScaleMin = *o.ScaleMin
	}
	if o.ScaleMax != nil {
		cfg.ScaleMax = *o.ScaleMax
	}
	if o.KMOThreshold != nil {
		cfg.KMOThreshold = *o.KMOThreshold
	}
	if o.SignificanceLevel != nil {
		cfg.SignificanceLevel = *o.SignificanceLevel
	}
	if o.MinClusters != nil {
		cfg.MinClusters = *o.MinClusters
	}
	if o.MaxClusters != nil {
		cfg.MaxClusters = *o.MaxClusters
	}
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	if o.RecommendationItem != nil {
		cfg.RecommendationItem = *o.RecommendationItem
	}
	if o.TimeItem != nil {
		cfg.TimeItem = *o.TimeItem
	}
	if o.Methodology != nil {
		cfg.Methodology = *o.Methodology
	}
	return cfg
}

// Labels lists every client supplied name in the request: item ids, dimension
// names and weight keys.
func (r *AnalyzeRequest) Labels() []string {
	labels := append([]string(nil), r.Items...)
	for _, d := range r.Dimensions {
		labels = append(labels, d.Name)
		labels = append(labels, d.Items...)
	}
	for k := range r.Weights {
		labels = append(labels, k)
	}
	return labels
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Metrics   map[string]interface{} `json:"metrics"`
	Services  map[string]interface{} `json:"services"`
}
