package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// StructureFile is the YAML layout of a dimension structure:
//
//	dimensions:
//	  - name: Leadership
//	    items: [lead_1, lead_2, lead_3]
//	weights:
//	  Leadership: 0.25
type StructureFile struct {
	Dimensions []analysis.Dimension `yaml:"dimensions" json:"dimensions"`
	Weights    map[string]float64   `yaml:"weights,omitempty" json:"weights,omitempty"`
}

// LoadStructure decodes a structure document and validates its dimensions.
func LoadStructure(r io.Reader) (*analysis.DimensionStructure, map[string]float64, error) {
	var sf StructureFile
	if err := yaml.NewDecoder(r).Decode(&sf); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, apperrors.NewUpstreamDataError(fmt.Sprintf("failed to decode structure: %v", err), nil)
	}
	s, err := analysis.NewDimensionStructure(sf.Dimensions)
	if err != nil {
		return nil, nil, err
	}
	return s, sf.Weights, nil
}

// LoadStructureFile reads a structure document from disk.
func LoadStructureFile(path string) (*analysis.DimensionStructure, map[string]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewUpstreamDataError(fmt.Sprintf("failed to open structure file: %v", err), nil)
	}
	defer file.Close()
	return LoadStructure(file)
}

// LoadConfig overlays a YAML document on the default configuration. Keys left
// out keep their defaults.
func LoadConfig(r io.Reader) (analysis.Config, error) {
	cfg := analysis.DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, apperrors.NewConfigurationError("failed to decode configuration", err)
	}
	return cfg, cfg.Validate()
}

// LoadConfigFile reads a configuration document from disk. An empty path
// yields the defaults.
func LoadConfigFile(path string) (analysis.Config, error) {
	if path == "" {
		return analysis.DefaultConfig(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return analysis.Config{}, apperrors.NewConfigurationError("failed to open configuration file", err)
	}
	defer file.Close()
	return LoadConfig(file)
}
