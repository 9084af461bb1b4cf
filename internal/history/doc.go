// Package history records one row per analyzed file in a SQLite database:
// what was analyzed, when, where the saved reports live, and how the
// analysis ended. The driver is modernc.org/sqlite, so the store works
// without cgo.
package history
