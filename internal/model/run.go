package model

import (
	"errors"
	"fmt"
	"time"
)

// RunState is the lifecycle state of an audit run.
// Runs only move forward: Initializing, Auditing, Finalized.
// There is no retry or resume; a failed run is re-invoked from scratch.
type RunState int

const (
	// StateInitializing means report directories are not created yet.
	StateInitializing RunState = iota

	// StateAuditing means pages are being processed and results accumulate.
	StateAuditing

	// StateFinalized means summaries are written and the browser is closed.
	StateFinalized
)

// String returns the state name.
func (s RunState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuditing:
		return "auditing"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// ErrInvalidTransition is returned when a run is moved out of order.
var ErrInvalidTransition = errors.New("invalid run state transition")

// ErrRunNotAuditing is returned when results are appended outside StateAuditing.
var ErrRunNotAuditing = errors.New("run is not accepting results")

// PageFailure records a page that produced no result.
type PageFailure struct {
	Page    string `json:"page"`
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RunReport is everything one invocation produced.
type RunReport struct {
	// ID uniquely identifies the run in the history database.
	ID string `json:"id"`

	// Timestamp is the run start. Its minute names the output directory.
	Timestamp time.Time `json:"timestamp"`

	// BaseURL is the application address the pages were loaded from.
	BaseURL string `json:"base_url"`

	// Dir is the timestamped output directory.
	Dir string `json:"dir"`

	// Results holds one entry per successful page, in registry order.
	Results []PageAuditResult `json:"results"`

	// Failures holds pages that were skipped, in registry order.
	Failures []PageFailure `json:"failures,omitempty"`

	// PagesTotal is the registry length at the time of the run.
	PagesTotal int `json:"pages_total"`

	// State is the lifecycle state.
	State RunState `json:"-"`
}

// NewRunReport creates a run in StateInitializing.
func NewRunReport(id string, ts time.Time, baseURL string, pagesTotal int) *RunReport {
	return &RunReport{
		ID:         id,
		Timestamp:  ts,
		BaseURL:    baseURL,
		PagesTotal: pagesTotal,
		Results:    make([]PageAuditResult, 0, pagesTotal),
		State:      StateInitializing,
	}
}

// Advance moves the run to the next state.
func (r *RunReport) Advance(to RunState) error {
	if to != r.State+1 || to > StateFinalized {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.State, to)
	}
	r.State = to
	return nil
}

// Append records a successful page.
func (r *RunReport) Append(res PageAuditResult) error {
	if r.State != StateAuditing {
		return ErrRunNotAuditing
	}
	r.Results = append(r.Results, res)
	return nil
}

// Fail records a skipped page.
func (r *RunReport) Fail(f PageFailure) error {
	if r.State != StateAuditing {
		return ErrRunNotAuditing
	}
	r.Failures = append(r.Failures, f)
	return nil
}

// TotalViolations sums violations over all successful pages.
func (r *RunReport) TotalViolations() int {
	total := 0
	for _, res := range r.Results {
		total += res.Violations
	}
	return total
}

// ImpactTotals sums the impact buckets over all successful pages.
func (r *RunReport) ImpactTotals() ImpactCounts {
	var c ImpactCounts
	for _, res := range r.Results {
		c.Critical += res.ViolationsByImpact.Critical
		c.Serious += res.ViolationsByImpact.Serious
		c.Moderate += res.ViolationsByImpact.Moderate
		c.Minor += res.ViolationsByImpact.Minor
	}
	return c
}
