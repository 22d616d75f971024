package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/monitoring"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

// options are the persistent flags shared by every subcommand.
type options struct {
	verbose bool
	format  string
	dataDir string
}

// NewRootCmd builds the qcscore command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "qcscore",
		Short: "Score quality-culture surveys",
		Long: `qcscore scores Likert quality-culture surveys against a dimension
structure and validates the instrument.

It reports dimension scores, NPQS, maturity, the selected methodology
(AFNOR, ISO 10010, EFQM, Baldrige or PDA), reliability, validity,
dimensionality, correlations, respondent clusters and sector benchmarks.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "json", "Output format (json, terminal)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "./data", "Directory holding benchmarks/<sector>.json")

	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newBenchmarkCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the command tree.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *options) logger(cmd *cobra.Command) *monitoring.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return monitoring.NewLoggerWithWriter(cmd.ErrOrStderr(), level)
}

// stylesFor enables colour only when w is an interactive terminal.
func stylesFor(w io.Writer) *styles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return newStyles(true)
	}
	return newStyles(false)
}
