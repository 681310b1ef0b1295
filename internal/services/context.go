package services

import "context"

type contextKey string

const (
	loadIDKey contextKey = "load_id"
	bookIDKey contextKey = "book_id"
	storeKey  contextKey = "store"
)

// WithLoadID annotates context with the load session identifier.
func WithLoadID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, loadIDKey, id)
}

// LoadIDFromContext extracts the load session identifier if present.
func LoadIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(loadIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithBookID annotates context with the asset identifier being processed.
func WithBookID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, bookIDKey, id)
}

// BookIDFromContext returns the asset identifier if present.
func BookIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(bookIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStore annotates context with the store name (catalog/annotation/sync).
func WithStore(ctx context.Context, store string) context.Context {
	if store == "" {
		return ctx
	}
	return context.WithValue(ctx, storeKey, store)
}

// StoreFromContext returns the store name if present.
func StoreFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(storeKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
