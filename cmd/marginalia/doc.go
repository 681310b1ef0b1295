// Command marginalia is the command line interface to the annotation
// library. It scans the Apple Books catalog and annotation stores,
// merges highlights and notes across the local and sync databases, and
// serves repeat lookups from a two-tier cache.
package main
