// Package covers resolves book cover images.
//
// A catalog row may carry a direct cover reference; when it parses as a
// URL it is passed through untouched. Otherwise, books stored as EPUB
// archives are unpacked into a scratch directory and probed for the
// conventional cover locations publishers use, falling back to the first
// image in an images directory. The winning image is copied into
// <cache_dir>/covers so later loads never reopen the archive.
//
// Cover resolution is strictly best-effort: every failure degrades to
// "no cover" with a debug log and never interrupts a scan.
package covers
