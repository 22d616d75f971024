package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// BenchmarkStore manages sector reference tables on disk.
type BenchmarkStore struct {
	dataDir string
}

// NewBenchmarkStore creates a store rooted at dataDir.
func NewBenchmarkStore(dataDir string) *BenchmarkStore {
	return &BenchmarkStore{dataDir: dataDir}
}

func (b *BenchmarkStore) path(sector string) string {
	return filepath.Join(b.dataDir, "benchmarks", fmt.Sprintf("%s.json", strings.ToLower(sector)))
}

func checkSector(sector string) error {
	if sector == "" || strings.ContainsAny(sector, `/\`) || strings.Contains(sector, "..") {
		return apperrors.NewValidationError(fmt.Sprintf("invalid sector name %q", sector))
	}
	return nil
}

// Load reads the reference table for a sector, falling back to the built-in
// industry table when no file exists.
func (b *BenchmarkStore) Load(sector string) (*Reference, error) {
	if err := checkSector(sector); err != nil {
		return nil, err
	}
	filePath := b.path(sector)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		ref := DefaultReference()
		ref.Sector = sector
		return ref, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open benchmark file: %w", err)
	}
	defer file.Close()

	var ref Reference
	if err := json.NewDecoder(file).Decode(&ref); err != nil {
		return nil, apperrors.NewUpstreamDataError(
			fmt.Sprintf("failed to decode benchmark data: %v", err),
			map[string]interface{}{"sector": sector},
		)
	}
	if ref.Sector == "" {
		ref.Sector = sector
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Save writes the reference table for a sector.
func (b *BenchmarkStore) Save(sector string, ref *Reference) error {
	if err := checkSector(sector); err != nil {
		return err
	}
	if err := ref.Validate(); err != nil {
		return err
	}
	filePath := b.path(sector)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create benchmark directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create benchmark file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ref); err != nil {
		return fmt.Errorf("failed to encode benchmark data: %w", err)
	}
	return nil
}

// Bootstrap persists a reference table per sector.
func (b *BenchmarkStore) Bootstrap(refs map[string]*Reference) error {
	for sector, ref := range refs {
		if err := b.Save(sector, ref); err != nil {
			return fmt.Errorf("failed to save benchmark for %s: %w", sector, err)
		}
	}
	return nil
}

// DefaultReference is the built-in cross-industry table.
func DefaultReference() *Reference {
	likert := func(avg float64) ReferenceMetric {
		return ReferenceMetric{
			Average: avg,
			Cuts:    PercentileCuts{P25: avg - 0.7, P50: avg, P75: avg + 0.6, P90: avg + 1.1},
		}
	}
	return &Reference{
		Sector: "industry",
		Metrics: map[string]ReferenceMetric{
			"npqs":       {Average: 25, Cuts: PercentileCuts{P25: 10, P50: 25, P75: 40, P90: 55}},
			"maturity":   {Average: 3.2, Cuts: PercentileCuts{P25: 2.5, P50: 3.2, P75: 3.8, P90: 4.3}},
			"leadership": likert(3.4),
			"engagement": likert(3.1),
			"process":    likert(3.3),
		},
	}
}
