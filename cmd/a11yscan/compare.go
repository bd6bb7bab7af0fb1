package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
)

// Page and run change directions.
const (
	directionWorsened  = "worsened"
	directionImproved  = "improved"
	directionUnchanged = "unchanged"
	directionNew       = "new"
	directionRemoved   = "removed"
)

// NewCompareCmd creates the compare command.
// This command compares audit runs stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [base-url]",
		Short: "Compare audit results with previous runs",
		Long: `Compare shows how violations changed between two recorded audit runs.

For every page it prints the violation count of both runs and the delta,
and it marks pages that were only audited in one of them. By default the
latest two runs of the base URL are compared.

Runs are recorded by 'a11yscan audit' unless --no-history is given.

Examples:
  # Compare the latest two runs of the default base URL
  a11yscan compare

  # List the recorded runs of a base URL
  a11yscan compare --list http://localhost:8080

  # Compare the latest run with a specific run
  a11yscan compare --with-run-id 3

  # Output the comparison as JSON or Markdown
  a11yscan compare --json
  a11yscan compare --markdown

  # Show how one page changed over all runs
  a11yscan compare --page Dashboard

  # List every audited base URL
  a11yscan compare --list-urls`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List the recorded runs of the base URL")
	cmd.Flags().BoolP("list-urls", "L", false,
		"List every base URL with recorded runs")
	cmd.Flags().StringP("page", "p", "",
		"Show the recorded results of one page, by name")
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare the latest run with the run of this ID (use --list to see IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	baseURL := config.DefaultBaseURL
	if len(args) == 1 {
		baseURL = strings.TrimSuffix(args[0], "/")
	}

	flags := cmd.Flags()
	listURLs, err := flags.GetBool("list-urls")
	if err != nil {
		return err
	}
	list, err := flags.GetBool("list")
	if err != nil {
		return err
	}
	page, err := flags.GetString("page")
	if err != nil {
		return err
	}
	withRunID, err := flags.GetInt64("with-run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case listURLs:
		return listBaseURLs(ctx, out, db)
	case list:
		return listRunHistory(ctx, out, db, baseURL)
	case page != "":
		return listPageHistory(ctx, out, db, baseURL, page)
	}

	result, err := loadComparison(ctx, db, baseURL, withRunID)
	if err != nil {
		return err
	}

	switch {
	case jsonOutput:
		return outputComparisonJSON(out, result)
	case markdownOutput:
		return outputComparisonMarkdown(out, result)
	default:
		return outputComparisonText(out, result)
	}
}

// listBaseURLs lists every base URL with recorded runs.
func listBaseURLs(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	urls, err := db.ListBaseURLs(ctx)
	if err != nil {
		return err
	}

	if len(urls) == 0 {
		fmt.Fprintln(out, "No audit runs found in the database.")
		fmt.Fprintln(out, "\nUse 'a11yscan audit' to audit an application.")
		return nil
	}

	fmt.Fprintf(out, "Audited base URLs (%d):\n\n", len(urls))
	for _, u := range urls {
		fmt.Fprintf(out, "  • %s\n", u)
	}
	fmt.Fprintln(out, "\nUse 'a11yscan compare --list <base-url>' to see the runs of a base URL.")
	return nil
}

// listRunHistory lists the recorded runs of baseURL, newest first.
func listRunHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, baseURL string) error {
	runs, err := db.GetRunHistory(ctx, baseURL)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No audit runs found for %s\n", baseURL)
		return nil
	}

	fmt.Fprintf(out, "Audit runs of %s (%d runs):\n\n", baseURL, len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %-10s  %s\n", "ID", "Date", "Pages", "Violations", "Impact Summary")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 72))
	for _, meta := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-8s  %-10d  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d/%d", meta.Audited, meta.PagesTotal),
			meta.Violations,
			formatImpactSummary(meta.Impacts),
		)
	}

	fmt.Fprintln(out, "\nUse 'a11yscan compare' to compare the latest two runs.")
	fmt.Fprintln(out, "Use 'a11yscan compare --with-run-id <id>' to compare with a specific run.")
	return nil
}

// listPageHistory lists the recorded results of one page, newest first.
// A run whose raw result is byte-identical to the next older one is
// marked with "=".
func listPageHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, baseURL, page string) error {
	records, err := db.GetPageHistory(ctx, baseURL, page)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No recorded results for page %q of %s\n", page, baseURL)
		return nil
	}

	fmt.Fprintf(out, "History of %s (%s) on %s (%d runs):\n\n", page, records[0].Result.Path, baseURL, len(records))
	fmt.Fprintf(out, "  %-6s  %-20s  %-10s  %-16s  %s\n", "Run", "Date", "Violations", "Impact Summary", "Raw")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 72))
	for i, rec := range records {
		marker := ""
		if i+1 < len(records) && rec.RawHash != "" && rec.RawHash == records[i+1].RawHash {
			marker = "="
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-10d  %-16s  %s %s\n",
			rec.RunID,
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.Result.Violations,
			formatImpactSummary(rec.Result.ViolationsByImpact),
			shortHash(rec.RawHash),
			marker,
		)
	}
	fmt.Fprintln(out, "\n\"=\" marks a raw result identical to the previous run.")
	return nil
}

// shortHash returns the first 12 characters of a content hash.
func shortHash(h string) string {
	if h == "" {
		return "-"
	}
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// formatImpactSummary formats impact counts as "C:1 S:2 M:0 m:3".
func formatImpactSummary(c model.ImpactCounts) string {
	var parts []string
	if c.Critical > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", c.Critical))
	}
	if c.Serious > 0 {
		parts = append(parts, fmt.Sprintf("S:%d", c.Serious))
	}
	if c.Moderate > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", c.Moderate))
	}
	if c.Minor > 0 {
		parts = append(parts, fmt.Sprintf("m:%d", c.Minor))
	}
	if len(parts) == 0 {
		return "No violations"
	}
	return strings.Join(parts, " ")
}

// loadComparison picks the two runs to compare and compares them.
func loadComparison(ctx context.Context, db *database.HistoryDB, baseURL string, withRunID int64) (*ComparisonResult, error) {
	runs, err := db.GetRunHistory(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no audit runs found for %s", baseURL)
	}

	currentMeta := runs[0]
	previousID := withRunID
	if previousID == 0 {
		if len(runs) < 2 {
			return nil, fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
		}
		previousID = runs[1].ID
	}
	if previousID == currentMeta.ID {
		return nil, fmt.Errorf("run %d is the latest run; choose an older run to compare with", previousID)
	}

	current, err := db.GetRunByID(ctx, currentMeta.ID)
	if err != nil {
		return nil, err
	}
	previous, err := db.GetRunByID(ctx, previousID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("run with ID %d not found", previousID)
		}
		return nil, err
	}
	if previous.BaseURL != current.BaseURL {
		return nil, fmt.Errorf("run %d belongs to %s, not %s", previousID, previous.BaseURL, current.BaseURL)
	}

	result := compareRuns(previous, current)
	result.PreviousRun.ID = previousID
	result.CurrentRun.ID = currentMeta.ID
	return result, nil
}

// ComparisonResult holds the result of comparing two audit runs.
type ComparisonResult struct {
	// BaseURL is the audited application address.
	BaseURL string `json:"base_url"`

	// PreviousRun summarizes the older run.
	PreviousRun RunSummary `json:"previous_run"`

	// CurrentRun summarizes the newer run.
	CurrentRun RunSummary `json:"current_run"`

	// Pages holds one entry per page audited in either run, in the
	// current run's order followed by pages only the previous run had.
	Pages []PageChange `json:"pages"`

	// Direction is the overall change of the violation total.
	Direction string `json:"direction"`
}

// RunSummary is the comparison view of one run.
type RunSummary struct {
	ID         int64              `json:"id"`
	RunID      string             `json:"run_id"`
	Timestamp  time.Time          `json:"timestamp"`
	Audited    int                `json:"audited"`
	Failed     int                `json:"failed"`
	Violations int                `json:"violations"`
	Impacts    model.ImpactCounts `json:"impacts"`
}

// PageChange is the violation change of one page.
type PageChange struct {
	Page     string `json:"page"`
	Path     string `json:"path"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
	Delta    int    `json:"delta"`

	// Direction is improved, worsened, unchanged, new or removed.
	Direction string `json:"direction"`
}

// summarizeRun builds the RunSummary of run.
func summarizeRun(run *model.RunReport) RunSummary {
	return RunSummary{
		RunID:      run.ID,
		Timestamp:  run.Timestamp,
		Audited:    len(run.Results),
		Failed:     len(run.Failures),
		Violations: run.TotalViolations(),
		Impacts:    run.ImpactTotals(),
	}
}

// compareRuns compares two runs page by page. Pages are matched by name.
func compareRuns(previous, current *model.RunReport) *ComparisonResult {
	result := &ComparisonResult{
		BaseURL:     current.BaseURL,
		PreviousRun: summarizeRun(previous),
		CurrentRun:  summarizeRun(current),
	}

	previousPages := make(map[string]model.PageAuditResult, len(previous.Results))
	for _, r := range previous.Results {
		previousPages[r.Page] = r
	}

	seen := make(map[string]bool, len(current.Results))
	for _, r := range current.Results {
		seen[r.Page] = true
		change := PageChange{Page: r.Page, Path: r.Path, Current: r.Violations}
		if old, ok := previousPages[r.Page]; ok {
			change.Previous = old.Violations
			change.Delta = r.Violations - old.Violations
			change.Direction = direction(change.Delta)
		} else {
			change.Delta = r.Violations
			change.Direction = directionNew
		}
		result.Pages = append(result.Pages, change)
	}

	for _, r := range previous.Results {
		if seen[r.Page] {
			continue
		}
		result.Pages = append(result.Pages, PageChange{
			Page:      r.Page,
			Path:      r.Path,
			Previous:  r.Violations,
			Delta:     -r.Violations,
			Direction: directionRemoved,
		})
	}

	result.Direction = direction(result.CurrentRun.Violations - result.PreviousRun.Violations)
	return result
}

// direction maps a violation delta to a direction.
func direction(delta int) string {
	switch {
	case delta < 0:
		return directionImproved
	case delta > 0:
		return directionWorsened
	default:
		return directionUnchanged
	}
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1("Audit Comparison: " + result.BaseURL)
	md.PlainText("")
	md.PlainTextf("**Status:** %s", formatDirection(result.Direction))
	md.PlainText("")

	prev, cur := result.PreviousRun, result.CurrentRun
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Run ID", strconv.FormatInt(prev.ID, 10), strconv.FormatInt(cur.ID, 10), "-"},
			{"Date", prev.Timestamp.Format("2006-01-02 15:04"), cur.Timestamp.Format("2006-01-02 15:04"), "-"},
			{"Pages audited", strconv.Itoa(prev.Audited), strconv.Itoa(cur.Audited), formatDelta(cur.Audited - prev.Audited)},
			{"Critical", strconv.Itoa(prev.Impacts.Critical), strconv.Itoa(cur.Impacts.Critical), formatDelta(cur.Impacts.Critical - prev.Impacts.Critical)},
			{"Serious", strconv.Itoa(prev.Impacts.Serious), strconv.Itoa(cur.Impacts.Serious), formatDelta(cur.Impacts.Serious - prev.Impacts.Serious)},
			{"Moderate", strconv.Itoa(prev.Impacts.Moderate), strconv.Itoa(cur.Impacts.Moderate), formatDelta(cur.Impacts.Moderate - prev.Impacts.Moderate)},
			{"Minor", strconv.Itoa(prev.Impacts.Minor), strconv.Itoa(cur.Impacts.Minor), formatDelta(cur.Impacts.Minor - prev.Impacts.Minor)},
			{"**Total**", "**" + strconv.Itoa(prev.Violations) + "**", "**" + strconv.Itoa(cur.Violations) + "**", "**" + formatDelta(cur.Violations-prev.Violations) + "**"},
		},
	})
	md.PlainText("")

	if len(result.Pages) > 0 {
		md.H2("Pages")
		md.PlainText("")
		rows := make([][]string, len(result.Pages))
		for i, p := range result.Pages {
			rows[i] = []string{
				p.Page,
				"`" + p.Path + "`",
				strconv.Itoa(p.Previous),
				strconv.Itoa(p.Current),
				formatDelta(p.Delta),
				p.Direction,
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Page", "Path", "Previous", "Current", "Change", "Status"},
			Rows:   rows,
		})
	}

	return md.Build()
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	prev, cur := result.PreviousRun, result.CurrentRun

	fmt.Fprintf(out, "Audit Comparison: %s\n", result.BaseURL)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "\nStatus: %s\n", formatDirection(result.Direction))
	fmt.Fprintf(out, "\nPrevious run: #%d  %s\n", prev.ID, prev.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current run:  #%d  %s\n", cur.ID, cur.Timestamp.Local().Format("2006-01-02 15:04:05"))

	fmt.Fprintln(out, "\nViolations by Impact:")
	fmt.Fprintf(out, "  %-10s  %-10s  %-10s  %-10s\n", "Impact", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	for _, impact := range model.Impacts {
		p, c := prev.Impacts.Get(impact), cur.Impacts.Get(impact)
		fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", impact, p, c, formatDelta(c-p))
	}
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "total",
		prev.Violations, cur.Violations, formatDelta(cur.Violations-prev.Violations))

	if len(result.Pages) > 0 {
		fmt.Fprintln(out, "\nPages:")
		for _, p := range result.Pages {
			fmt.Fprintf(out, "  %s %-20s %-16s %3d -> %-3d (%s)\n",
				directionMarker(p.Direction), p.Page, p.Path, p.Previous, p.Current, formatDelta(p.Delta))
		}
	}

	return nil
}

// formatDirection formats a change direction for display.
func formatDirection(d string) string {
	switch d {
	case directionImproved:
		return "IMPROVED (fewer violations)"
	case directionWorsened:
		return "WORSENED (more violations)"
	default:
		return "UNCHANGED"
	}
}

// directionMarker returns the one-character marker of a page change.
func directionMarker(d string) string {
	switch d {
	case directionImproved:
		return "-"
	case directionWorsened:
		return "+"
	case directionNew:
		return "N"
	case directionRemoved:
		return "R"
	default:
		return "="
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
