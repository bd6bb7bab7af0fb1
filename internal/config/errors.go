package config

import "errors"

// Configuration validation errors.
// These are returned by Config.Validate and NewRegistry so callers can use
// errors.Is for programmatic handling.
var (
	// ErrNoPages is returned when the page registry is empty.
	ErrNoPages = errors.New("no pages to audit: the page registry is empty")

	// ErrEmptyPageName is returned when a page has no display label.
	// The label names the per-page report file, so it cannot be blank.
	ErrEmptyPageName = errors.New("invalid page: name must not be empty")

	// ErrDuplicatePage is returned when two page labels map to the same
	// report file, e.g. "Home" and "home".
	ErrDuplicatePage = errors.New("invalid page registry: duplicate page name")

	// ErrInvalidPageName is returned when a label contains a path
	// separator and would name a file outside the run directory.
	ErrInvalidPageName = errors.New("invalid page name: must not contain / or \\")

	// ErrReservedPageName is returned when a label maps to a summary file
	// name, e.g. "Summary".
	ErrReservedPageName = errors.New("invalid page name: reserved for the run summary")

	// ErrInvalidPagePath is returned when a route does not start with "/".
	ErrInvalidPagePath = errors.New("invalid page path: must start with /")

	// ErrInvalidBaseURL is returned when the base URL lacks a scheme or host.
	ErrInvalidBaseURL = errors.New("invalid base URL: expected scheme://host[:port]")

	// ErrInvalidTimeout is returned when the navigation timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid navigation timeout: must be positive")

	// ErrEmptyOutputDir is returned when no report directory is configured.
	ErrEmptyOutputDir = errors.New("invalid output directory: must not be empty")

	// ErrNoAxeScript is returned when neither a local axe-core script nor a
	// script URL is configured.
	ErrNoAxeScript = errors.New("no axe-core script configured")
)
