// Package logging assembles the structured slog loggers used across
// marginalia.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so store readers and the
// loader can automatically tag log lines with load session, book, and
// store identifiers. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
//
// Command output (tables, JSON documents) belongs on stdout; loggers
// built here write to stderr plus an optional log file so the two never
// interleave.
package logging
