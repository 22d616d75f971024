package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// missingTokens are cell values read as a missing response.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
}

// ReadFile loads a response matrix, choosing the reader from the file
// extension.
func ReadFile(path string) (*analysis.ResponseMatrix, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NewUpstreamDataError(fmt.Sprintf("responses file not found: %s", path), nil)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		return ReadCSV(file)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, "")
	case ".json":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open JSON file: %w", err)
		}
		defer file.Close()
		return ReadJSON(file)
	default:
		return nil, apperrors.NewUpstreamDataError(fmt.Sprintf("unsupported responses file type: %s", ext), nil)
	}
}

// ReadCSV reads a header row of item IDs followed by one row per respondent.
func ReadCSV(r io.Reader) (*analysis.ResponseMatrix, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewUpstreamDataError(fmt.Sprintf("failed to read CSV: %v", err), nil)
	}
	return processRows(rows)
}

// ReadXLSX reads a worksheet with the same layout as ReadCSV. An empty sheet
// name selects the first sheet.
func ReadXLSX(path, sheet string) (*analysis.ResponseMatrix, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewUpstreamDataError(fmt.Sprintf("failed to open Excel file: %v", err), nil)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewUpstreamDataError(fmt.Sprintf("failed to read sheet %s: %v", sheet, err), nil)
	}
	return processRows(rows)
}

// ResponseDocument is the JSON form of a response matrix. A nil response
// value is a missing answer.
type ResponseDocument struct {
	Items     []string              `json:"items,omitempty"`
	Responses []map[string]*float64 `json:"responses"`
}

// ReadJSON decodes a ResponseDocument.
func ReadJSON(r io.Reader) (*analysis.ResponseMatrix, error) {
	var doc ResponseDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, apperrors.NewUpstreamDataError(fmt.Sprintf("failed to decode responses: %v", err), nil)
	}
	return FromRecords(doc.Items, doc.Responses)
}

// processRows converts a header row and string cells into a response matrix.
// Trailing cells left out of a row are missing.
func processRows(rows [][]string) (*analysis.ResponseMatrix, error) {
	if len(rows) < 2 {
		return nil, apperrors.NewUpstreamDataError("responses must have a header row and at least one data row", nil)
	}

	items := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		items[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	values := make([][]float64, 0, len(rows)-1)
	for r, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) > len(items) {
			return nil, apperrors.NewUpstreamDataError(
				fmt.Sprintf("row has %d cells but the header names %d items", len(row), len(items)),
				map[string]interface{}{"row": r + 2},
			)
		}
		vals := make([]float64, len(items))
		for c := range items {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, apperrors.NewUpstreamDataError(
					fmt.Sprintf("non-numeric response %q", cell),
					map[string]interface{}{"row": r + 2, "item": items[c]},
				)
			}
			vals[c] = v
		}
		values = append(values, vals)
	}
	if len(values) == 0 {
		return nil, apperrors.NewUpstreamDataError("responses contain no data rows", nil)
	}
	return analysis.NewResponseMatrix(items, values)
}

func parseCell(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if missingTokens[strings.ToLower(s)] {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
