package audit

import (
	"context"
	"time"
)

// Session is a running browser shared by all page audits of a run.
type Session interface {
	// NewPage opens a page in a fresh isolated browsing context, so no
	// cookies, storage or script state carry over from earlier pages.
	NewPage(ctx context.Context) (Page, error)

	// Close shuts the browser down.
	Close() error
}

// Page is one isolated tab. It is owned by a single page audit and closed
// before the next audit starts.
type Page interface {
	// Navigate loads url and blocks until network activity is quiescent
	// or timeout elapses, whichever comes first. Hitting the timeout is an error.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// Analyze runs axe-core against the loaded document and returns the
	// raw JSON result.
	Analyze(ctx context.Context) ([]byte, error)

	// Close releases the tab and its browsing context.
	Close() error
}

// LaunchFunc starts the browser session for a run.
// Errors should be *SessionLaunchError; other errors are wrapped in one.
type LaunchFunc func(ctx context.Context) (Session, error)

// Observer receives progress notifications while pages are audited.
// Calls happen on the runner's goroutine, in registry order.
type Observer interface {
	PageStarted(name, path string, index, total int)
	PageAudited(result PageOutcome)
	PageFailed(name, path string, err error)
}

// PageOutcome describes a finished page for observers.
type PageOutcome struct {
	Name       string
	Path       string
	Violations int
	Critical   int
	Serious    int
	Artifact   string
}

// nopObserver discards notifications.
type nopObserver struct{}

func (nopObserver) PageStarted(string, string, int, int) {}
func (nopObserver) PageAudited(PageOutcome)              {}
func (nopObserver) PageFailed(string, string, error)     {}
