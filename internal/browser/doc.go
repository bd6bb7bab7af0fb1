// Package browser drives headless Chromium with go-rod for the audit runner.
//
// Each audited page gets its own incognito browser context, so cookies,
// storage and script state never leak from one page to the next. The
// configured auth cookie and extra headers are applied to every page.
package browser
