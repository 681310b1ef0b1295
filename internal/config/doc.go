// Package config loads, normalizes, and validates marginalia configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: store locations, cache directory and TTLs, log routing,
// and watch debouncing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
// Store existence is deliberately not checked here; that is the source
// validator's job at scan time.
package config
