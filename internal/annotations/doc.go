// Package annotations assembles the highlight and note records for a book
// from every annotation source.
//
// Two sources contribute: the local annotation store files (one SQLite
// database each, tombstoned rows excluded in the query) and the optional
// secondary sync store, whose rows carry binary property-list payloads that
// expand into further records. Local records always come first; sync
// records are appended after them. Failures are scoped to the store they
// occur in, so a broken sync payload or an unopenable store file never
// costs the records the other sources produced.
//
// The payload decoder is total: whatever bytes it is handed, it returns a
// (possibly empty) slice and never panics.
package annotations
