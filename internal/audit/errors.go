package audit

import "fmt"

// Failure kinds recorded in model.PageFailure.
const (
	KindNavigation = "navigation"
	KindAnalysis   = "analysis"
	KindArtifact   = "artifact"
)

// NavigationError is returned when a page could not be opened or did not
// finish loading within the navigation timeout. It only fails that page.
type NavigationError struct {
	// Page is the label of the page being audited.
	Page string

	// URL is the address that was requested.
	URL string

	// Err is the underlying browser error.
	Err error
}

// Error implements the error interface.
func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s (%s): %v", e.Page, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *NavigationError) Unwrap() error {
	return e.Err
}

// AnalysisError is returned when axe-core could not analyze a loaded page
// or returned a result that is not an analysis result. It only fails that page.
type AnalysisError struct {
	// Page is the label of the page being audited.
	Page string

	// Err is the underlying engine or decoding error.
	Err error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyze %s: %v", e.Page, e.Err)
}

// Unwrap returns the underlying error.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// SessionLaunchError is returned when the browser could not be started.
// It aborts the run before any page is audited.
type SessionLaunchError struct {
	Err error
}

// Error implements the error interface.
func (e *SessionLaunchError) Error() string {
	return fmt.Sprintf("launch browser session: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionLaunchError) Unwrap() error {
	return e.Err
}
