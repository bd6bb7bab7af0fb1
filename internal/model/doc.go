// Package model defines the data structures of an accessibility audit run:
// decoded axe-core results, per-page summary rows, impact buckets and the
// run report with its lifecycle state.
package model
