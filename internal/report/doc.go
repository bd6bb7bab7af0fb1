// Package report writes the artifacts of an audit run.
//
// It owns the report directory layout (a base directory with one
// YYYY-MM-DD_HH-MM subdirectory per run), the raw per-page axe-core
// results and the run summaries:
//
//   - summary.json: the ordered page results, verbatim
//   - summary.html: a static table with clear/low/high cell classes
//   - summary.md: a Markdown report with an impact pie chart
//
// The SimpleWriter prints the same summary to the terminal.
package report
