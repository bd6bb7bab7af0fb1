package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/a11yscan/internal/model"
)

// SimpleWriter outputs a plain-text run summary for the terminal.
// It uses ASCII formatting only, so it can be piped to files.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the run summary.
func (w *SimpleWriter) Write(run *model.RunReport) (int, error) {
	var b strings.Builder

	b.WriteString(strings.Repeat("=", 78) + "\n")
	b.WriteString("ACCESSIBILITY AUDIT SUMMARY\n")
	b.WriteString(strings.Repeat("=", 78) + "\n")
	fmt.Fprintf(&b, "Base URL:  %s\n", run.BaseURL)
	fmt.Fprintf(&b, "Run date:  %s\n", run.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Audited:   %d of %d pages\n\n", len(run.Results), run.PagesTotal)

	fmt.Fprintf(&b, "%-20s %-20s %5s %5s %5s %5s %5s %6s\n",
		"PAGE", "PATH", "TOTAL", "CRIT", "SER", "MOD", "MIN", "PASSES")
	b.WriteString(strings.Repeat("-", 78) + "\n")
	for _, r := range run.Results {
		fmt.Fprintf(&b, "%-20s %-20s %5d %5d %5d %5d %5d %6d\n",
			truncateString(r.Page, 20),
			truncateString(r.Path, 20),
			r.Violations,
			r.ViolationsByImpact.Critical,
			r.ViolationsByImpact.Serious,
			r.ViolationsByImpact.Moderate,
			r.ViolationsByImpact.Minor,
			r.Passes,
		)
	}

	if len(run.Failures) > 0 {
		b.WriteString("\nSKIPPED PAGES\n")
		for _, f := range run.Failures {
			fmt.Fprintf(&b, "  [%s] %s (%s): %s\n", strings.ToUpper(f.Kind), f.Page, f.Path, f.Message)
		}
	}

	return io.WriteString(w.output, b.String())
}
