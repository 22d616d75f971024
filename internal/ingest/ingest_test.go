package ingest

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

func TestReadCSV(t *testing.T) {
	input := "lead_1,lead_2,recommend\n" +
		"4,5,9\n" +
		"3,NA,\n" +
		"\n" +
		"2, null ,7\n"

	m, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, []string{"lead_1", "lead_2", "recommend"}, m.Items())

	col, ok := m.Column("lead_2")
	require.True(t, ok)
	assert.Equal(t, 5.0, col[0])
	assert.True(t, math.IsNaN(col[1]))
	assert.True(t, math.IsNaN(col[2]))

	rec, _ := m.Column("recommend")
	assert.True(t, math.IsNaN(rec[1]))
	assert.Equal(t, 7.0, rec[2])
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"header only", "a,b\n"},
		{"non-numeric cell", "a,b\n1,high\n"},
		{"too many cells", "a,b\n1,2,3\n"},
		{"duplicate items", "a,a\n1,2\n"},
		{"only blank rows", "a,b\n,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, apperrors.IsCategory(err, apperrors.CategoryUpstreamData))
		})
	}
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"eng_1", "eng_2"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{4, 3}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{5}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	m, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Rows())
	col, _ := m.Column("eng_2")
	assert.Equal(t, 3.0, col[0])
	assert.True(t, math.IsNaN(col[1]))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("a,b\n1,2\n"), 0644))
	m, err := ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Rows())

	jsonPath := filepath.Join(dir, "responses.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"items":["b","a"],"responses":[{"a":1,"b":null}]}`), 0644))
	m, err = ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, m.Items())

	_, err = ReadFile(filepath.Join(dir, "responses.parquet"))
	assert.Error(t, err)

	txtPath := filepath.Join(dir, "responses.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("a"), 0644))
	_, err = ReadFile(txtPath)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryUpstreamData))
}

func ptr(v float64) *float64 { return &v }

func TestFromRecords(t *testing.T) {
	records := []map[string]*float64{
		{"q2": ptr(3), "q1": ptr(4)},
		{"q2": nil, "q1": ptr(2)},
	}

	m, err := FromRecords(nil, records)
	require.NoError(t, err)

	assert.Equal(t, []string{"q1", "q2"}, m.Items())
	col, _ := m.Column("q2")
	assert.Equal(t, 3.0, col[0])
	assert.True(t, math.IsNaN(col[1]))

	_, err = FromRecords(nil, nil)
	assert.Error(t, err)

	_, err = FromRecords([]string{"q1", "q2"}, []map[string]*float64{{"q1": ptr(1)}})
	assert.Error(t, err)

	_, err = FromRecords([]string{"q1", "q3"}, records)
	assert.Error(t, err)
}

func TestLoadStructure(t *testing.T) {
	doc := `
dimensions:
  - name: Leadership
    items: [lead_1, lead_2, lead_3]
  - name: Engagement
    items: [eng_1, eng_2]
weights:
  Leadership: 0.6
  Engagement: 0.4
`
	s, weights, err := LoadStructure(strings.NewReader(doc))
	require.NoError(t, err)

	dims := s.Dimensions()
	require.Len(t, dims, 2)
	assert.Equal(t, analysis.Dimension{Name: "Leadership", Items: []string{"lead_1", "lead_2", "lead_3"}}, dims[0])
	assert.Equal(t, map[string]float64{"Leadership": 0.6, "Engagement": 0.4}, weights)
}

func TestLoadStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"invalid yaml", "dimensions: [unterminated"},
		{"duplicate dimension", "dimensions:\n  - {name: A, items: [a]}\n  - {name: A, items: [b]}\n"},
		{"dimension without items", "dimensions:\n  - {name: A, items: []}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadStructure(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("alpha_threshold: 0.8\nmethodology: pda\nscale_max: 7\n"))
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.AlphaThreshold)
	assert.Equal(t, analysis.MethodologyPDA, cfg.Methodology)
	assert.Equal(t, 7.0, cfg.ScaleMax)
	assert.Equal(t, analysis.DefaultConfig().KMOThreshold, cfg.KMOThreshold)

	cfg, err = LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultConfig(), cfg)

	_, err = LoadConfig(strings.NewReader("min_clusters: 1\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryConfiguration))

	cfg, err = LoadConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultConfig(), cfg)
}
