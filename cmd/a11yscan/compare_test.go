package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
)

func pageResult(name, path string, critical, minor int) model.PageAuditResult {
	return model.PageAuditResult{
		Page:       name,
		Path:       path,
		Violations: critical + minor,
		ViolationsByImpact: model.ImpactCounts{
			Critical: critical,
			Minor:    minor,
		},
	}
}

func testRun(id string, ts time.Time, results ...model.PageAuditResult) *model.RunReport {
	return &model.RunReport{
		ID:         id,
		Timestamp:  ts,
		BaseURL:    "http://localhost:3000",
		Results:    results,
		PagesTotal: len(results),
	}
}

// TestNewCompareCmd tests the compare command flags.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	if cmd.Use != "compare [base-url]" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}

	flagsWithShort := map[string]string{
		"list":        "l",
		"list-urls":   "L",
		"page":        "p",
		"with-run-id": "i",
		"json":        "j",
		"markdown":    "m",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}
}

// TestCompareRuns tests the page-by-page comparison.
func TestCompareRuns(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	previous := testRun("a", t0,
		pageResult("Home", "/", 1, 2),
		pageResult("Login", "/login", 0, 1),
		pageResult("Legacy", "/legacy", 0, 4),
	)
	current := testRun("b", t0.Add(time.Hour),
		pageResult("Home", "/", 0, 1),
		pageResult("Login", "/login", 0, 1),
		pageResult("Settings", "/settings", 2, 0),
	)

	got := compareRuns(previous, current)

	want := []PageChange{
		{Page: "Home", Path: "/", Previous: 3, Current: 1, Delta: -2, Direction: directionImproved},
		{Page: "Login", Path: "/login", Previous: 1, Current: 1, Delta: 0, Direction: directionUnchanged},
		{Page: "Settings", Path: "/settings", Previous: 0, Current: 2, Delta: 2, Direction: directionNew},
		{Page: "Legacy", Path: "/legacy", Previous: 4, Current: 0, Delta: -4, Direction: directionRemoved},
	}
	if diff := cmp.Diff(want, got.Pages); diff != "" {
		t.Errorf("page changes mismatch (-want +got):\n%s", diff)
	}
	if got.PreviousRun.Violations != 8 || got.CurrentRun.Violations != 4 {
		t.Errorf("unexpected totals %d -> %d", got.PreviousRun.Violations, got.CurrentRun.Violations)
	}
	if got.Direction != directionImproved {
		t.Errorf("expected improved, got %s", got.Direction)
	}
	if got.CurrentRun.Impacts.Critical != 2 {
		t.Errorf("expected 2 critical in current run, got %d", got.CurrentRun.Impacts.Critical)
	}
}

// TestDirection tests delta classification.
func TestDirection(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		delta int
		want  string
	}{
		{-3, directionImproved},
		{0, directionUnchanged},
		{1, directionWorsened},
	}
	for _, tc := range testCases {
		if got := direction(tc.delta); got != tc.want {
			t.Errorf("direction(%d) = %s, want %s", tc.delta, got, tc.want)
		}
	}
}

// TestFormatDelta tests signed delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		delta int
		want  string
	}{
		{5, "+5"},
		{0, "0"},
		{-2, "-2"},
	}
	for _, tc := range testCases {
		if got := formatDelta(tc.delta); got != tc.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tc.delta, got, tc.want)
		}
	}
}

// TestFormatImpactSummary tests the history listing summary.
func TestFormatImpactSummary(t *testing.T) {
	t.Parallel()

	if got := formatImpactSummary(model.ImpactCounts{}); got != "No violations" {
		t.Errorf("unexpected empty summary %q", got)
	}
	got := formatImpactSummary(model.ImpactCounts{Critical: 1, Moderate: 3})
	if got != "C:1 M:3" {
		t.Errorf("unexpected summary %q", got)
	}
}

// TestLoadComparison tests run selection from the history database.
func TestLoadComparison(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	const baseURL = "http://localhost:3000"

	if _, err := loadComparison(ctx, db, baseURL, 0); err == nil {
		t.Error("expected error without runs")
	}

	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first, err := db.SaveRun(ctx, testRun("r1", t0, pageResult("Home", "/", 2, 0)))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := loadComparison(ctx, db, baseURL, 0); err == nil || !strings.Contains(err.Error(), "at least 2 runs") {
		t.Errorf("expected too-few-runs error, got %v", err)
	}

	second, err := db.SaveRun(ctx, testRun("r2", t0.Add(time.Hour), pageResult("Home", "/", 1, 0)))
	if err != nil {
		t.Fatal(err)
	}
	latest, err := db.SaveRun(ctx, testRun("r3", t0.Add(2*time.Hour), pageResult("Home", "/", 0, 3)))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("latest two", func(t *testing.T) {
		t.Parallel()

		got, err := loadComparison(ctx, db, baseURL, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.PreviousRun.ID != second || got.CurrentRun.ID != latest {
			t.Errorf("expected runs %d -> %d, got %d -> %d", second, latest, got.PreviousRun.ID, got.CurrentRun.ID)
		}
		if got.Direction != directionWorsened {
			t.Errorf("expected worsened, got %s", got.Direction)
		}
	})

	t.Run("with run id", func(t *testing.T) {
		t.Parallel()

		got, err := loadComparison(ctx, db, baseURL, first)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.PreviousRun.RunID != "r1" {
			t.Errorf("expected r1, got %s", got.PreviousRun.RunID)
		}
	})

	t.Run("unknown run id", func(t *testing.T) {
		t.Parallel()

		if _, err := loadComparison(ctx, db, baseURL, 999); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("latest run id", func(t *testing.T) {
		t.Parallel()

		if _, err := loadComparison(ctx, db, baseURL, latest); err == nil {
			t.Error("expected error when comparing a run with itself")
		}
	})
}

// TestListPageHistory tests the per-page history listing.
func TestListPageHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, crit := range []int{2, 1} {
		if _, err := db.SaveRun(ctx, testRun([]string{"h1", "h2"}[i], t0.Add(time.Duration(i)*time.Hour), pageResult("Home", "/", crit, 0))); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := listPageHistory(ctx, &buf, db, "http://localhost:3000", "Home"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "History of Home (/)") || !strings.Contains(output, "(2 runs)") {
		t.Errorf("unexpected output:\n%s", output)
	}
	if !strings.Contains(output, "C:2") || !strings.Contains(output, "C:1") {
		t.Errorf("expected both impact summaries:\n%s", output)
	}

	buf.Reset()
	if err := listPageHistory(ctx, &buf, db, "http://localhost:3000", "Nowhere"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No recorded results") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

// TestShortHash tests hash abbreviation.
func TestShortHash(t *testing.T) {
	t.Parallel()

	if got := shortHash(""); got != "-" {
		t.Errorf("expected -, got %q", got)
	}
	if got := shortHash("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("unexpected %q", got)
	}
}

// TestOutputComparison tests the three output formats.
func TestOutputComparison(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	result := compareRuns(
		testRun("a", t0, pageResult("Home", "/", 0, 1)),
		testRun("b", t0.Add(time.Hour), pageResult("Home", "/", 1, 1)),
	)

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := outputComparisonText(&buf, result); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"Audit Comparison: http://localhost:3000", "WORSENED", "Home", "+1"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, buf.String())
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := outputComparisonMarkdown(&buf, result); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"# Audit Comparison", "| Page", "WORSENED"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, buf.String())
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := outputComparisonJSON(&buf, result); err != nil {
			t.Fatal(err)
		}
		var decoded ComparisonResult
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if diff := cmp.Diff(result.Pages, decoded.Pages); diff != "" {
			t.Errorf("pages mismatch (-want +got):\n%s", diff)
		}
	})
}
