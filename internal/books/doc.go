// Package books defines the domain model shared by the ingestion pipeline:
// books, their annotations, highlight styles, and the epoch conversion used
// by the external annotation stores.
//
// A Book is assembled from up to three read-only stores (catalog, local
// annotations, synced annotations) and carries its annotations in insertion
// order: local-store records first, then any records recovered from synced
// payloads. Annotation IDs are generated per load session and are not stable
// identities across runs; the store-assigned asset ID on the book is.
//
// The annotation stores encode timestamps as seconds since 2001-01-01 UTC.
// Convert at ingestion time with TimeFromAppleSeconds so every timestamp in
// the model is a plain time.Time on the Unix epoch.
package books
