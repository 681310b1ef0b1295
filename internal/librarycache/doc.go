// Package librarycache persists scanned library results between runs.
//
// Two independent tiers back the loader:
//
//   - a durable JSON document at <cache_dir>/library.json holding every
//     book from the last completed scan, honored while its timestamp is
//     within the library TTL;
//   - an in-memory per-book map scoped to this process, honored only
//     while the last completed load is within the book TTL.
//
// The document is written atomically (temp file plus rename) under a
// flock file lock so concurrent processes never interleave writes. A
// damaged or unreadable document is treated as a miss, never as a
// failure: the next scan simply rebuilds it from the stores.
package librarycache
