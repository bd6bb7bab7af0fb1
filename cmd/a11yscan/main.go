// Package main provides the entry point for the a11yscan CLI.
//
// a11yscan audits the pages of a locally served web application with
// axe-core in headless Chromium and writes per-page and summary reports.
//
// Usage:
//
//	a11yscan audit
//	a11yscan audit --base-url http://localhost:8080 --output reports
//	a11yscan compare --list
//	a11yscan smoke --browser firefox
//
// See --help for all available options.
package main

// main is the entry point for a11yscan.
func main() {
	Execute()
}
