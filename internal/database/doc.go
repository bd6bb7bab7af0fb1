// Package database stores the history of audit runs in SQLite.
//
// Every finished run is saved with its page results, so the compare
// command can show how violations changed between runs. Each page row
// carries the SHA3-256 of its raw axe-core result, which tells whether
// two runs found byte-identical problems.
//
// The driver is modernc.org/sqlite, which needs no cgo.
package database
