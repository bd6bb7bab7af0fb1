// Package smoke opens the application in a locally installed browser and
// prints a manual accessibility checklist.
//
// Browsers come from a static table of launch commands per operating
// system. Nothing is automated beyond starting the browser; the checklist
// is for the person testing.
package smoke
