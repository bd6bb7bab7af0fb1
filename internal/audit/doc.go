// Package audit runs the accessibility audit of a fixed list of pages.
//
// A Runner moves through three states. While initializing it creates the
// timestamped report directory and launches the browser. While auditing it
// visits each registered page in order, each in its own isolated tab:
// navigate, wait for network quiescence or the timeout, run axe-core, write
// the raw result and tally it. A page that fails is logged and skipped. When
// every page has been visited the summaries are written, the browser is
// closed and the run is finalized.
//
// The browser itself is behind the Session and Page interfaces; the go-rod
// implementation lives in package browser.
package audit
