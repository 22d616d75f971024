package analysis

import (
	"fmt"
	"math"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// Config carries every threshold the engine consults. It is passed by value
// to each component and never read from globals.
type Config struct {
	AlphaThreshold      float64         `json:"alpha_threshold" yaml:"alpha_threshold"`
	AVEThreshold        float64         `json:"ave_threshold" yaml:"ave_threshold"`
	ScaleMin            float64         `json:"scale_min" yaml:"scale_min"`
	ScaleMax            float64         `json:"scale_max" yaml:"scale_max"`
	DiscriminantCeiling float64         `json:"discriminant_ceiling" yaml:"discriminant_ceiling"`
	ModerateCorrelation float64         `json:"moderate_correlation" yaml:"moderate_correlation"`
	StrongCorrelation   float64         `json:"strong_correlation" yaml:"strong_correlation"`
	KMOThreshold        float64         `json:"kmo_threshold" yaml:"kmo_threshold"`
	SignificanceLevel   float64         `json:"significance_level" yaml:"significance_level"`
	MinClusters         int             `json:"min_clusters" yaml:"min_clusters"`
	MaxClusters         int             `json:"max_clusters" yaml:"max_clusters"`
	Seed                int64           `json:"seed" yaml:"seed"`
	MaxIterations       int             `json:"max_iterations" yaml:"max_iterations"`
	ClusterRestarts     int             `json:"cluster_restarts" yaml:"cluster_restarts"`
	ParallelIterations  int             `json:"parallel_iterations" yaml:"parallel_iterations"`
	RecommendationItem  string          `json:"recommendation_item" yaml:"recommendation_item"`
	TimeItem            string          `json:"time_item" yaml:"time_item"`
	Methodology         MethodologyKind `json:"methodology" yaml:"methodology"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		AlphaThreshold:      0.70,
		AVEThreshold:        0.50,
		ScaleMin:            1,
		ScaleMax:            5,
		DiscriminantCeiling: 0.85,
		ModerateCorrelation: 0.50,
		StrongCorrelation:   0.70,
		KMOThreshold:        0.60,
		SignificanceLevel:   0.05,
		MinClusters:         2,
		MaxClusters:         6,
		Seed:                42,
		MaxIterations:       300,
		ClusterRestarts:     10,
		ParallelIterations:  20,
		Methodology:         MethodologyISO10010,
	}
}

// Validate reports the first setting outside its domain as a configuration
// error.
func (c Config) Validate() error {
	unit := func(name string, v float64) error {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return apperrors.NewConfigurationError(fmt.Sprintf("%s must be within [0, 1], got %v", name, v), nil)
		}
		return nil
	}

	checks := []struct {
		name string
		v    float64
	}{
		{"alpha_threshold", c.AlphaThreshold},
		{"ave_threshold", c.AVEThreshold},
		{"discriminant_ceiling", c.DiscriminantCeiling},
		{"moderate_correlation", c.ModerateCorrelation},
		{"strong_correlation", c.StrongCorrelation},
		{"kmo_threshold", c.KMOThreshold},
		{"significance_level", c.SignificanceLevel},
	}
	for _, chk := range checks {
		if err := unit(chk.name, chk.v); err != nil {
			return err
		}
	}

	if math.IsNaN(c.ScaleMin) || math.IsNaN(c.ScaleMax) || math.IsInf(c.ScaleMin, 0) || math.IsInf(c.ScaleMax, 0) {
		return apperrors.NewConfigurationError("scale bounds must be finite", nil)
	}
	if c.ScaleMin < 0 {
		return apperrors.NewConfigurationError(fmt.Sprintf("scale_min must be non-negative, got %v", c.ScaleMin), nil)
	}
	if c.ScaleMax <= c.ScaleMin {
		return apperrors.NewConfigurationError(fmt.Sprintf("scale_max (%v) must exceed scale_min (%v)", c.ScaleMax, c.ScaleMin), nil)
	}
	if c.StrongCorrelation < c.ModerateCorrelation {
		return apperrors.NewConfigurationError("strong_correlation must not be below moderate_correlation", nil)
	}
	if c.MinClusters < 2 {
		return apperrors.NewConfigurationError(fmt.Sprintf("min_clusters must be at least 2, got %d", c.MinClusters), nil)
	}
	if c.MaxClusters < c.MinClusters {
		return apperrors.NewConfigurationError(fmt.Sprintf("max_clusters (%d) must not be below min_clusters (%d)", c.MaxClusters, c.MinClusters), nil)
	}
	if c.MaxIterations <= 0 || c.ClusterRestarts <= 0 {
		return apperrors.NewConfigurationError("max_iterations and cluster_restarts must be positive", nil)
	}
	if c.ParallelIterations <= 0 {
		return apperrors.NewConfigurationError("parallel_iterations must be positive", nil)
	}
	if _, ok := methodologyKinds[c.Methodology]; !ok {
		return apperrors.NewConfigurationError(fmt.Sprintf("unknown methodology %q", c.Methodology), nil)
	}
	return nil
}
