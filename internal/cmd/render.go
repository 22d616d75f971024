package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ZanzyTHEbar/quality-culture-o-meter/internal/analysis"
)

// styles holds the lipgloss styles of the terminal report. Disabled styles
// render text unchanged so piped output stays plain.
type styles struct {
	enabled bool

	header  lipgloss.Style
	label   lipgloss.Style
	good    lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	muted   lipgloss.Style
	ok      string
	caution string
}

func newStyles(enabled bool) *styles {
	s := &styles{enabled: enabled, ok: "+", caution: "!"}
	plain := lipgloss.NewStyle()
	s.header, s.label, s.good, s.warn, s.bad, s.muted = plain, plain, plain, plain, plain, plain
	if enabled {
		s.header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
		s.label = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
		s.good = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		s.warn = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		s.bad = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		s.muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.ok = "✓"
		s.caution = "⚠"
	}
	return s
}

func (s *styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// levelRank places level in the table that defines it and returns its rank
// and the table's top rank. top is 0 for levels no table knows.
func levelRank(level analysis.MaturityLevel, pda bool) (rank, top int) {
	if pda {
		for i, l := range analysis.PDALevels {
			if l == level {
				return i, len(analysis.PDALevels) - 1
			}
		}
		return 0, 0
	}
	for _, t := range []analysis.MaturityTable{analysis.LikertMaturityTable, analysis.PercentMaturityTable} {
		if r := t.Rank(level); r > 0 || level == t.Floor {
			return r, len(t.Cuts)
		}
	}
	return 0, 0
}

func (s *styles) level(level analysis.MaturityLevel, pda bool) string {
	if level == "" {
		return s.render(s.muted, "n/a")
	}
	rank, top := levelRank(level, pda)
	switch {
	case top == 0:
		return string(level)
	case rank >= top-1:
		return s.render(s.good, string(level))
	case 2*rank >= top:
		return s.render(s.warn, string(level))
	default:
		return s.render(s.bad, string(level))
	}
}

func (s *styles) check(ok bool) string {
	if ok {
		return s.render(s.good, s.ok)
	}
	return s.render(s.warn, s.caution)
}

// renderReport writes a human readable summary of report.
func renderReport(w io.Writer, s *styles, r *analysis.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", s.render(s.header, "Quality culture report"))
	fmt.Fprintf(&b, "%s %s  %s %d  %s %d\n\n",
		s.render(s.muted, "id"), r.ID,
		s.render(s.muted, "respondents"), r.Respondents,
		s.render(s.muted, "items"), r.Items)

	fmt.Fprintf(&b, "%s\n", s.render(s.header, "Dimensions"))
	for _, d := range r.Dimensions {
		fmt.Fprintf(&b, "  %-24s %6.2f  %s\n", s.render(s.label, d.Name), d.Mean, s.level(d.Level, false))
	}
	for _, skipped := range r.Coverage.Skipped {
		fmt.Fprintf(&b, "  %-24s %s\n", s.render(s.muted, skipped.Name),
			s.render(s.warn, "skipped, missing "+strings.Join(skipped.MissingItems, ", ")))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s\n", s.render(s.header, "Scores"))
	if r.NPQS.Available {
		fmt.Fprintf(&b, "  %-24s %6.1f  (%d promoters, %d passives, %d detractors)\n",
			"NPQS", r.NPQS.NPQS, r.NPQS.Promoters, r.NPQS.Passives, r.NPQS.Detractors)
	} else {
		fmt.Fprintf(&b, "  %-24s %s\n", "NPQS", s.render(s.muted, "n/a "+r.NPQS.Reason))
	}
	if r.Maturity.Available {
		fmt.Fprintf(&b, "  %-24s %6.2f  %s\n", "Maturity", r.Maturity.Overall, s.level(r.Maturity.OverallLevel, false))
	}
	if r.Methodology.Available {
		fmt.Fprintf(&b, "  %-24s %6.2f  %s %s\n", strings.ToUpper(string(r.Methodology.Kind)),
			r.Methodology.Score, s.render(s.muted, r.Methodology.Scale), s.level(r.Methodology.Level, r.Methodology.Kind == analysis.MethodologyPDA))
		if len(r.Methodology.CriticalAreas) > 0 {
			fmt.Fprintf(&b, "  %-24s %s\n", "Critical areas", s.render(s.bad, strings.Join(r.Methodology.CriticalAreas, ", ")))
		}
	} else {
		fmt.Fprintf(&b, "  %-24s %s\n", strings.ToUpper(string(r.Methodology.Kind)), s.render(s.muted, "n/a "+r.Methodology.Reason))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s\n", s.render(s.header, "Validation"))
	for _, d := range r.Dimensions {
		rel, ok := r.Validation.Reliability.Dimensions[d.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s %-22s alpha %.3f  CR %.3f\n", s.check(rel.AlphaAcceptable), d.Name, rel.Alpha, rel.CR)
	}
	sa := r.Validation.SampleAdequacy
	fmt.Fprintf(&b, "  %s %-22s %d responses / %d items (%.1f:1)\n", s.check(sa.Adequate5to1), "Sample", sa.Responses, sa.Items, sa.Ratio)
	if r.Clustering.Available {
		fmt.Fprintf(&b, "  %s %-22s %d clusters, silhouette %.3f\n", s.check(r.Clustering.Silhouette > 0.25), "Clustering", r.Clustering.K, r.Clustering.Silhouette)
	}
	b.WriteString("\n")

	if r.Benchmark.Available {
		fmt.Fprintf(&b, "%s %s\n", s.render(s.header, "Benchmark"), s.render(s.muted, r.Benchmark.Sector))
		for _, c := range r.Benchmark.Comparisons {
			if !c.Available || c.Gap == nil {
				fmt.Fprintf(&b, "  %-24s %6.2f  %s\n", c.Metric, c.Score, s.render(s.muted, "no reference"))
				continue
			}
			gap := fmt.Sprintf("%+.2f", *c.Gap)
			if *c.Gap < 0 {
				gap = s.render(s.bad, gap)
			} else {
				gap = s.render(s.good, gap)
			}
			fmt.Fprintf(&b, "  %-24s %6.2f  %s  %s\n", c.Metric, c.Score, gap, c.PerformanceLabel)
		}
		b.WriteString("\n")
	}

	if r.Trends.Available {
		fmt.Fprintf(&b, "%s %s\n", s.render(s.header, "Trends"), s.render(s.muted, r.Trends.Basis))
		for _, d := range r.Dimensions {
			tr, ok := r.Trends.Dimensions[d.Name]
			if !ok {
				continue
			}
			dir := tr.Direction
			switch dir {
			case analysis.TrendImproving:
				dir = s.render(s.good, dir)
			case analysis.TrendDeclining:
				dir = s.render(s.bad, dir)
			}
			fmt.Fprintf(&b, "  %-24s %6.2f -> %.2f  %s\n", d.Name, tr.FirstHalf, tr.SecondHalf, dir)
		}
		b.WriteString("\n")
	}

	if len(r.Validation.Recommendations) > 0 {
		fmt.Fprintf(&b, "%s\n", s.render(s.header, "Recommendations"))
		for _, rec := range r.Validation.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
		b.WriteString("\n")
	}

	if len(r.Flags) > 0 {
		fmt.Fprintf(&b, "%s\n", s.render(s.header, "Flags"))
		for _, f := range r.Flags {
			fmt.Fprintf(&b, "  %s %s [%s] %s\n", s.render(s.warn, s.caution), f.Section, f.Kind, f.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
