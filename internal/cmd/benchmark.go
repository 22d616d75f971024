package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/encoding"
)

func newBenchmarkCmd(opts *options) *cobra.Command {
	var from, sheet string
	var reset bool

	cmd := &cobra.Command{
		Use:   "benchmark <sector>",
		Short: "Show or calibrate a sector reference table",
		Long: `Show the reference table used to benchmark a sector. Sectors without a
stored table fall back to the built-in cross-industry reference.

With --from, a reference dataset (one column per metric such as npqs,
maturity or a dimension name) is reduced to averages and percentile cuts and
saved under --data-dir before being printed. --reset writes the built-in
table for the sector instead, so it can be edited by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sector := args[0]
			store := analysis.NewBenchmarkStore(opts.dataDir)
			logger := opts.logger(cmd)

			if reset {
				ref := analysis.DefaultReference()
				ref.Sector = sector
				if err := store.Bootstrap(map[string]*analysis.Reference{sector: ref}); err != nil {
					return err
				}
				logger.SystemLogger("benchmark_reset", "sector="+sector)
			}
			if from != "" {
				ref, err := calibrate(sector, from, sheet)
				if err != nil {
					return err
				}
				if err := store.Save(sector, ref); err != nil {
					return err
				}
				logger.SystemLogger("benchmark_calibrated", fmt.Sprintf("sector=%s metrics=%d", sector, len(ref.Metrics)))
			}

			ref, err := store.Load(sector)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch opts.format {
			case "terminal":
				return renderReference(out, stylesFor(out), ref)
			case "json":
				return encoding.NewEncoder(true).Encode(out, ref)
			default:
				return fmt.Errorf("unknown format %q", opts.format)
			}
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Reference dataset to calibrate from (.csv, .xlsx, .json)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read from an XLSX dataset")
	cmd.Flags().BoolVar(&reset, "reset", false, "Write the built-in reference table for the sector")
	cmd.MarkFlagsMutuallyExclusive("from", "reset")
	return cmd
}

func calibrate(sector, path, sheet string) (*analysis.Reference, error) {
	matrix, err := readResponses(path, sheet)
	if err != nil {
		return nil, err
	}
	data := make(map[string][]float64, len(matrix.Items()))
	for _, item := range matrix.Items() {
		col, _ := matrix.Column(item)
		data[item] = col
	}
	return analysis.ReferenceFromDataset(sector, data)
}

func renderReference(w io.Writer, s *styles, ref *analysis.Reference) error {
	names := make([]string, 0, len(ref.Metrics))
	for name := range ref.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", s.render(s.header, "Reference"), s.render(s.muted, ref.Sector))
	fmt.Fprintf(&b, "  %-16s %8s %8s %8s %8s %8s\n", "metric", "average", "p25", "p50", "p75", "p90")
	for _, name := range names {
		m := ref.Metrics[name]
		fmt.Fprintf(&b, "  %-16s %8.2f %8.2f %8.2f %8.2f %8.2f\n",
			s.render(s.label, name), m.Average, m.Cuts.P25, m.Cuts.P50, m.Cuts.P75, m.Cuts.P90)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
