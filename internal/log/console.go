package log

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/nao1215/a11yscan/internal/audit"
	"github.com/nao1215/a11yscan/internal/model"
)

// Console prints audit progress for humans. It implements audit.Observer.
// Colors are dropped automatically when out is not a terminal.
type Console struct {
	out io.Writer

	dim     lipgloss.Style
	bold    lipgloss.Style
	clear   lipgloss.Style
	low     lipgloss.Style
	high    lipgloss.Style
	failure lipgloss.Style
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		out:     out,
		dim:     r.NewStyle().Foreground(lipgloss.Color("240")),
		bold:    r.NewStyle().Bold(true),
		clear:   r.NewStyle().Foreground(lipgloss.Color("#2DA44E")),
		low:     r.NewStyle().Foreground(lipgloss.Color("#BF8700")),
		high:    r.NewStyle().Foreground(lipgloss.Color("#CF222E")).Bold(true),
		failure: r.NewStyle().Foreground(lipgloss.Color("#CF222E")),
	}
}

// PageStarted prints "[i/n] Auditing <name> (<path>)...".
func (c *Console) PageStarted(name, path string, index, total int) {
	fmt.Fprintf(c.out, "%s Auditing %s (%s)...\n",
		c.dim.Render(fmt.Sprintf("[%d/%d]", index+1, total)),
		c.bold.Render(name),
		path,
	)
}

// PageAudited prints the violation count colored by its classification.
func (c *Console) PageAudited(res audit.PageOutcome) {
	style := c.clear
	switch model.Classify(res.Violations) {
	case model.ClassLow:
		style = c.low
	case model.ClassHigh:
		style = c.high
	case model.ClassClear:
	}

	line := fmt.Sprintf("  ✓ %d violations", res.Violations)
	if res.Critical+res.Serious > 0 {
		line += fmt.Sprintf(" (%d critical, %d serious)", res.Critical, res.Serious)
	}
	fmt.Fprintln(c.out, style.Render(line))
}

// PageFailed prints the failure kind and error.
func (c *Console) PageFailed(_, _ string, err error) {
	fmt.Fprintln(c.out, c.failure.Render(fmt.Sprintf("  ✗ %s failed: %v", audit.FailureKind(err), err)))
}

// Done prints where the reports of a finished run are.
func (c *Console) Done(run *model.RunReport) {
	fmt.Fprintf(c.out, "\nAudited %d of %d pages, %d violations.\n",
		len(run.Results), run.PagesTotal, run.TotalViolations())
	fmt.Fprintf(c.out, "Reports written to %s\n", c.bold.Render(run.Dir))
}
