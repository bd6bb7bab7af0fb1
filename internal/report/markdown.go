package report

import (
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/a11yscan/internal/model"
)

// MarkdownWriter outputs a run summary in GitHub Flavored Markdown,
// suitable for pasting into a pull request or wiki page.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(run *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeSummary(md, run)
	w.writePages(md, run)
	w.writeFailures(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.RunReport) {
	md.H1("Accessibility Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", "`" + run.BaseURL + "`"},
			{"Run Date", run.Timestamp.Format("2006-01-02 15:04:05 MST")},
			{"Pages Audited", strconv.Itoa(len(run.Results)) + " / " + strconv.Itoa(run.PagesTotal)},
			{"Total Violations", strconv.Itoa(run.TotalViolations())},
		},
	})
	md.PlainText("")
}

// writeSummary writes impact totals, a pie chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, run *model.RunReport) {
	totals := run.ImpactTotals()
	title := cases.Title(language.English)

	md.H2("Impact Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Impacts))
	for _, impact := range model.Impacts {
		rows = append(rows, []string{title.String(impact.String()), strconv.Itoa(totals.Get(impact))})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Impact", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if totals.Total() > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Violations by Impact"),
			piechart.WithShowData(true),
		)
		for _, impact := range model.Impacts {
			if n := totals.Get(impact); n > 0 {
				chart.LabelAndIntValue(title.String(impact.String()), uint64(n)) //nolint:gosec // counts are non-negative
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case totals.Critical > 0:
		md.Cautionf("%d critical violation(s) block some users entirely.", totals.Critical)
	case totals.Serious > 0:
		md.Warningf("%d serious violation(s) seriously hamper some users.", totals.Serious)
	case run.TotalViolations() > 0:
		md.Note("Only moderate, minor or unclassified violations were found.")
	default:
		md.Tip("No automatically detectable violations were found.")
	}
	md.PlainText("")
}

// writePages writes one table row per audited page.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, run *model.RunReport) {
	md.H2("Pages")
	md.PlainText("")

	if len(run.Results) == 0 {
		md.PlainText("No pages were audited successfully.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.Results))
	for i, r := range run.Results {
		rows[i] = []string{
			r.Page,
			"`" + r.Path + "`",
			strconv.Itoa(r.Violations),
			strconv.Itoa(r.ViolationsByImpact.Critical),
			strconv.Itoa(r.ViolationsByImpact.Serious),
			strconv.Itoa(r.ViolationsByImpact.Moderate),
			strconv.Itoa(r.ViolationsByImpact.Minor),
			strconv.Itoa(r.Passes),
			ArtifactName(r.Page),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Path", "Violations", "Critical", "Serious", "Moderate", "Minor", "Passes", "Raw Result"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures lists pages that produced no result.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, run *model.RunReport) {
	if len(run.Failures) == 0 {
		return
	}

	md.H2("Skipped Pages")
	md.PlainText("")

	items := make([]string, len(run.Failures))
	for i, f := range run.Failures {
		items[i] = f.Page + " (`" + f.Path + "`): " + f.Kind + " - " + truncateString(f.Message, 120)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by a11yscan with axe-core*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
// Multibyte characters are never split.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}
