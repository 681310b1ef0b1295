// Package services defines shared plumbing consumed by every ingestion
// component.
//
// Key responsibilities:
//   - Context helpers that stamp load session IDs, book asset IDs, and store
//     names so log lines from deep inside a scan stay correlated.
//   - Sentinel error markers plus the Wrap helper that classify failures into
//     the pipeline's taxonomy: a missing store is fatal to a load, while
//     per-file read and per-payload decode failures stay isolated to their
//     scope and the scan continues.
//
// Use these helpers when wiring new store readers so operational behaviour
// (what aborts a load vs. what degrades it) stays uniform across the pipeline.
package services
