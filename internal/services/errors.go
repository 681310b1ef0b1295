package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnavailable marks a mandatory store path that is missing or
	// unreadable. It is the only marker fatal to a load.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrFileRead marks a single catalog or annotation file that could not
	// be opened or queried. The scan continues with the remaining files.
	ErrFileRead = errors.New("file read failure")
	// ErrDecode marks a synced payload no known format could parse. The
	// record degrades to zero annotations.
	ErrDecode = errors.New("payload decode failure")
	// ErrCacheCorrupt marks an unreadable durable cache document. It is
	// treated as a cache miss, never as a load failure.
	ErrCacheCorrupt = errors.New("cache corrupt")
)

// Wrap builds an error message that includes store context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, store, operation, message string, err error) error {
	detail := buildDetail(store, operation, message)
	if marker == nil {
		marker = ErrFileRead
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether the error must abort the load entirely. Only missing
// or unreadable mandatory stores qualify; everything else is scoped to one
// file or payload.
func Fatal(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

func buildDetail(store, operation, message string) string {
	parts := make([]string, 0, 3)
	if store = strings.TrimSpace(store); store != "" {
		parts = append(parts, store)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "store failure"
	}
	return strings.Join(parts, ": ")
}
