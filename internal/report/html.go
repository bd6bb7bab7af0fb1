package report

import (
	"bytes"
	"html/template"
	"io"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/a11yscan/internal/model"
)

// summaryTemplate is the static HTML summary. html/template escapes page
// labels and paths, so the rendered document cannot be broken by config.
var summaryTemplate = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Accessibility Audit Summary</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2328; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
th, td { border: 1px solid #d0d7de; padding: 0.5rem 0.75rem; text-align: left; }
th { background: #f6f8fa; }
td.clear { background: #dafbe1; }
td.low { background: #fff8c5; }
td.high { background: #ffebe9; font-weight: bold; }
.guidance { max-width: 48rem; }
</style>
</head>
<body>
<h1>Accessibility Audit Summary</h1>
<p>Generated {{.Generated}}</p>
<table>
<thead>
<tr><th scope="col">Page</th><th scope="col">Path</th><th scope="col">Violations</th>{{range .ImpactHeaders}}<th scope="col">{{.}}</th>{{end}}<th scope="col">Passes</th></tr>
</thead>
<tbody>
{{- range .Rows}}
<tr><td>{{.Page}}</td><td><code>{{.Path}}</code></td><td class="{{.Total.Class}}">{{.Total.Count}}</td>{{range .Impacts}}<td class="{{.Class}}">{{.Count}}</td>{{end}}<td>{{.Passes}}</td></tr>
{{- else}}
<tr><td colspan="8">No pages were audited successfully.</td></tr>
{{- end}}
</tbody>
</table>
<section class="guidance">
<h2>How to read this report</h2>
<ul>
<li><strong>Critical</strong> and <strong>serious</strong> violations block or seriously hamper users of assistive technology. Fix them first.</li>
<li><strong>Moderate</strong> and <strong>minor</strong> violations make content harder to use and should be scheduled.</li>
<li>Cells are green at zero, yellow for one or two issues and red from three upwards.</li>
<li>Each page has a raw JSON result next to this file with the failing rules, affected nodes and links to remediation guidance.</li>
<li>Automated checks find only part of all accessibility problems. Test with a keyboard and a screen reader as well.</li>
</ul>
</section>
</body>
</html>
`))

// summaryCell is one classified count.
type summaryCell struct {
	Count int
	Class model.Classification
}

// summaryRow is the view model of one table row.
type summaryRow struct {
	Page    string
	Path    string
	Total   summaryCell
	Impacts []summaryCell
	Passes  int
}

// summaryView is the validated data handed to the template.
type summaryView struct {
	Generated     string
	ImpactHeaders []string
	Rows          []summaryRow
}

// newSummaryView builds the view model. Impact columns follow model.Impacts.
func newSummaryView(results []model.PageAuditResult, timestamp time.Time) summaryView {
	title := cases.Title(language.English)

	headers := make([]string, 0, len(model.Impacts))
	for _, impact := range model.Impacts {
		headers = append(headers, title.String(impact.String()))
	}

	rows := make([]summaryRow, 0, len(results))
	for _, r := range results {
		row := summaryRow{
			Page:    r.Page,
			Path:    r.Path,
			Total:   summaryCell{Count: r.Violations, Class: model.Classify(r.Violations)},
			Impacts: make([]summaryCell, 0, len(model.Impacts)),
			Passes:  r.Passes,
		}
		for _, impact := range model.Impacts {
			n := r.ViolationsByImpact.Get(impact)
			row.Impacts = append(row.Impacts, summaryCell{Count: n, Class: model.Classify(n)})
		}
		rows = append(rows, row)
	}

	return summaryView{
		Generated:     timestamp.Format("2006-01-02 15:04:05 MST"),
		ImpactHeaders: headers,
		Rows:          rows,
	}
}

// RenderSummaryHTML renders the static HTML summary. It has no side
// effects: the same results and timestamp always give identical bytes.
func RenderSummaryHTML(results []model.PageAuditResult, timestamp time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, newSummaryView(results, timestamp)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HTMLWriter outputs the HTML summary of a run.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the run's results stamped with the run timestamp.
func (w *HTMLWriter) Write(run *model.RunReport) (int, error) {
	data, err := RenderSummaryHTML(run.Results, run.Timestamp)
	if err != nil {
		return 0, err
	}
	return w.output.Write(data)
}
