// Package axe injects the axe-core rule engine into a browser page and
// runs it.
//
// The result is returned as the JSON text axe.run() produced, with the
// violations, passes, incomplete and inapplicable arrays untouched.
package axe
