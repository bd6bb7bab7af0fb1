// Package log provides the logging and console output of a11yscan.
//
// Loggers are plain *slog.Logger values whose handler is wrapped in a
// RedactingHandler. Audits of pages behind a login carry a session cookie
// and possibly Authorization headers; those values are masked even in
// verbose mode, as are token-looking values and sensitive URL query
// parameters.
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("navigating", "url", "http://localhost:3000/?token=abc") // token=***REDACTED***
//
// Console renders the per-page progress lines of an audit with lipgloss.
package log
