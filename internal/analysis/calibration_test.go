package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

func TestBenchmarkStore_Load(t *testing.T) {
	store := NewBenchmarkStore(t.TempDir())

	tests := []struct {
		name    string
		sector  string
		wantErr bool
	}{
		{name: "falls back to the industry table", sector: "pharma"},
		{name: "rejects empty sector", sector: "", wantErr: true},
		{name: "rejects path traversal", sector: "../etc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := store.Load(tt.sector)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sector, ref.Sector)
			assert.Equal(t, 25.0, ref.Metrics["npqs"].Average)
			assert.Equal(t, 3.2, ref.Metrics["maturity"].Average)
		})
	}
}

func TestBenchmarkStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewBenchmarkStore(dir)
	ref := &Reference{
		Sector: "automotive",
		Metrics: map[string]ReferenceMetric{
			"npqs": {Average: 31, Cuts: PercentileCuts{P25: 12, P50: 30, P75: 45, P90: 60}},
		},
	}

	require.NoError(t, store.Save("automotive", ref))
	assert.FileExists(t, filepath.Join(dir, "benchmarks", "automotive.json"))

	loaded, err := store.Load("Automotive")
	require.NoError(t, err)
	assert.Equal(t, ref, loaded)
}

func TestBenchmarkStore_Errors(t *testing.T) {
	dir := t.TempDir()
	store := NewBenchmarkStore(dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "benchmarks"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "benchmarks", "broken.json"), []byte("{not json"), 0644))
	_, err := store.Load("broken")
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryUpstreamData))
	assert.True(t, apperrors.IsCategory(store.Save("../escape", DefaultReference()), apperrors.CategoryValidation))

	invalid := &Reference{Metrics: map[string]ReferenceMetric{
		"npqs": {Cuts: PercentileCuts{P25: 3, P50: 2, P75: 1, P90: 0}},
	}}
	assert.Error(t, store.Save("invalid", invalid))
}

func TestBenchmarkStore_Bootstrap(t *testing.T) {
	dir := t.TempDir()
	store := NewBenchmarkStore(dir)

	err := store.Bootstrap(map[string]*Reference{
		"food":   DefaultReference(),
		"health": DefaultReference(),
	})
	require.NoError(t, err)

	for _, sector := range []string{"food", "health"} {
		assert.FileExists(t, filepath.Join(dir, "benchmarks", sector+".json"))
	}
}
