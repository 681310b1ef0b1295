// Package watcher turns store directory churn into debounced change
// notifications. The reading app rewrites its SQLite files (and their
// -wal/-shm sidecars) in bursts; a quiet period coalesces each burst
// into a single notification so consumers invalidate and rescan once.
package watcher
