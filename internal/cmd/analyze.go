package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/encoding"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/ingest"
)

type analyzeOptions struct {
	responses   string
	sheet       string
	structure   string
	config      string
	benchmark   string
	methodology string
	timeItem    string
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	a := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a survey response file",
		Long: `Score a survey response file against a dimension structure.

Responses are read from CSV, XLSX or JSON. The header row holds item ids and
empty, NA, NaN or null cells count as missing.

Examples:
  qcscore analyze --responses survey.csv --structure structure.yaml
  qcscore analyze --responses survey.xlsx --sheet Wave2 --structure structure.yaml --benchmark pharmaceutical
  qcscore analyze --responses survey.csv --structure structure.yaml --config analysis.yaml -f terminal`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, a)
		},
	}

	cmd.Flags().StringVar(&a.responses, "responses", "", "Response file (.csv, .xlsx, .json)")
	cmd.Flags().StringVar(&a.sheet, "sheet", "", "Worksheet to read from an XLSX file (default first sheet)")
	cmd.Flags().StringVar(&a.structure, "structure", "", "YAML dimension structure with optional weights")
	cmd.Flags().StringVar(&a.config, "config", "", "YAML analysis configuration")
	cmd.Flags().StringVar(&a.benchmark, "benchmark", "", "Sector to benchmark against")
	cmd.Flags().StringVar(&a.methodology, "methodology", "", "Override the configured methodology (afnor, iso10010, efqm, baldrige, pda)")
	cmd.Flags().StringVar(&a.timeItem, "time-item", "", "Column holding the survey wave or date code used for trends")
	_ = cmd.MarkFlagRequired("responses")
	_ = cmd.MarkFlagRequired("structure")
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *options, a *analyzeOptions) error {
	start := time.Now()
	logger := opts.logger(cmd)

	cfg, err := ingest.LoadConfigFile(a.config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.methodology != "" {
		cfg.Methodology = analysis.MethodologyKind(strings.ToLower(a.methodology))
	}
	if a.timeItem != "" {
		cfg.TimeItem = a.timeItem
	}
	analyzer, err := analysis.NewAnalyzer(cfg, analysis.WithLogger(logger.Logger))
	if err != nil {
		return err
	}

	matrix, err := readResponses(a.responses, a.sheet)
	if err != nil {
		return err
	}
	structure, weights, err := ingest.LoadStructureFile(a.structure)
	if err != nil {
		return err
	}

	var ref *analysis.Reference
	if a.benchmark != "" {
		ref, err = analysis.NewBenchmarkStore(opts.dataDir).Load(a.benchmark)
		if err != nil {
			return fmt.Errorf("failed to load benchmark %s: %w", a.benchmark, err)
		}
	}

	report, err := analyzer.Analyze(cmd.Context(), analysis.Input{
		Matrix:    matrix,
		Structure: structure,
		Reference: ref,
		Weights:   weights,
	})
	if err != nil {
		return err
	}
	logger.AnalysisLogger(report.ID, report.Respondents, len(report.Coverage.Scored), len(report.Flags),
		string(report.Methodology.Kind), time.Since(start))

	out := cmd.OutOrStdout()
	switch opts.format {
	case "terminal":
		return renderReport(out, stylesFor(out), report)
	case "json":
		return encoding.NewEncoder(true).Encode(out, report)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func readResponses(path, sheet string) (*analysis.ResponseMatrix, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if sheet != "" && (ext == ".xlsx" || ext == ".xlsm") {
		return ingest.ReadXLSX(path, sheet)
	}
	return ingest.ReadFile(path)
}
