package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotAnObject is returned when an analysis result is not a JSON object.
var ErrNotAnObject = errors.New("decode analysis result: not a JSON object")

// Violation is one violated axe-core rule. Only the fields the reports use
// are decoded; the raw analysis result keeps everything else.
type Violation struct {
	ID          string            `json:"id"`
	Impact      string            `json:"impact"`
	Description string            `json:"description,omitempty"`
	Help        string            `json:"help,omitempty"`
	HelpURL     string            `json:"helpUrl,omitempty"`
	Nodes       []json.RawMessage `json:"nodes,omitempty"`
}

// AnalysisResults is the decoded shape of an axe.run() result.
// Non-violation entries are opaque because only their number is reported.
type AnalysisResults struct {
	Violations   []Violation       `json:"violations"`
	Passes       []json.RawMessage `json:"passes"`
	Incomplete   []json.RawMessage `json:"incomplete"`
	Inapplicable []json.RawMessage `json:"inapplicable"`
}

// DecodeAnalysisResults decodes a raw axe-core result.
// A result that is not a JSON object is rejected. That includes null,
// which would otherwise decode to a page with zero violations.
func DecodeAnalysisResults(raw []byte) (AnalysisResults, error) {
	var res *AnalysisResults
	if err := json.Unmarshal(raw, &res); err != nil {
		return AnalysisResults{}, fmt.Errorf("decode analysis result: %w", err)
	}
	if res == nil {
		return AnalysisResults{}, ErrNotAnObject
	}
	return *res, nil
}

// ImpactCounts tallies violations per tracked impact bucket.
type ImpactCounts struct {
	Critical int `json:"critical"`
	Serious  int `json:"serious"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
}

// Add increments the bucket of impact. ImpactUnknown is ignored.
func (c *ImpactCounts) Add(impact Impact) {
	switch impact {
	case ImpactCritical:
		c.Critical++
	case ImpactSerious:
		c.Serious++
	case ImpactModerate:
		c.Moderate++
	case ImpactMinor:
		c.Minor++
	case ImpactUnknown:
	}
}

// Get returns the count of one bucket.
func (c ImpactCounts) Get(impact Impact) int {
	switch impact {
	case ImpactCritical:
		return c.Critical
	case ImpactSerious:
		return c.Serious
	case ImpactModerate:
		return c.Moderate
	case ImpactMinor:
		return c.Minor
	default:
		return 0
	}
}

// Total is the sum of the four buckets.
func (c ImpactCounts) Total() int {
	return c.Critical + c.Serious + c.Moderate + c.Minor
}

// PageAuditResult is the summary row of one successfully audited page.
// It is created once by NewPageAuditResult and never mutated afterwards.
//
// The JSON field names are the summary.json format consumed by other
// tooling, so they do not follow the snake_case used elsewhere.
type PageAuditResult struct {
	Page               string       `json:"page"`
	Path               string       `json:"path"`
	Violations         int          `json:"violations"`
	Passes             int          `json:"passes"`
	Incomplete         int          `json:"incomplete"`
	Inapplicable       int          `json:"inapplicable"`
	ViolationsByImpact ImpactCounts `json:"violationsByImpact"`
}

// NewPageAuditResult counts an analysis result for the given page.
// ViolationsByImpact.Total() never exceeds Violations.
func NewPageAuditResult(name, path string, res AnalysisResults) PageAuditResult {
	r := PageAuditResult{
		Page:         name,
		Path:         path,
		Violations:   len(res.Violations),
		Passes:       len(res.Passes),
		Incomplete:   len(res.Incomplete),
		Inapplicable: len(res.Inapplicable),
	}
	for _, v := range res.Violations {
		r.ViolationsByImpact.Add(ParseImpact(v.Impact))
	}
	return r
}
