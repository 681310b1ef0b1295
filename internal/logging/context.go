package logging

import (
	"context"
	"log/slog"

	"marginalia/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldLoadID is the standardized structured logging key for load session identifiers.
	FieldLoadID = "load_id"
	// FieldBookID is the standardized structured logging key for library asset identifiers.
	FieldBookID = "book_id"
	// FieldStore is the standardized structured logging key for store names (catalog/annotation/sync).
	FieldStore = "store"
	// FieldPhase is the standardized structured logging key for loader phases.
	FieldPhase = "phase"
	// FieldPath is the standardized structured logging key for filesystem paths.
	FieldPath = "path"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.LoadIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldLoadID, id))
	}
	if id, ok := services.BookIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBookID, id))
	}
	if store, ok := services.StoreFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStore, store))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
