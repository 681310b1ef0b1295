// Package sources resolves and validates the read-only store locations a
// load scans.
//
// A library consists of a catalog store directory (book metadata), an
// annotation store directory (highlights and notes), and an optional
// secondary sync store file. Validation confirms the mandatory directories
// exist and are readable before any scan begins; discovery enumerates the
// SQLite files inside them in a stable order. Nothing here opens a
// database or writes to disk.
package sources
