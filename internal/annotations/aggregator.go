package annotations

import (
	"context"
	"errors"
	"log/slog"

	"marginalia/internal/books"
	"marginalia/internal/logging"
	"marginalia/internal/services"
	"marginalia/internal/sources"
)

// Aggregator merges annotation records for one book from every open store.
type Aggregator struct {
	logger *slog.Logger
	locals []*localStore
	sync   *syncStore
}

// Open connects to every annotation store file plus the optional sync store.
// Stores that fail to open are reported as non-fatal errors while the
// remaining stores stay usable; the aggregator itself is always returned.
// Callers must Close it when the load finishes.
func Open(ctx context.Context, loc sources.Locations, logger *slog.Logger) (*Aggregator, []error) {
	log := logging.NewComponentLogger(logger, "annotations")
	agg := &Aggregator{logger: log}
	var openErrs []error

	files, err := sources.AnnotationFiles(loc)
	if err != nil {
		openErrs = append(openErrs, err)
	}
	for _, path := range files {
		store, err := openLocalStore(ctx, path)
		if err != nil {
			openErrs = append(openErrs, services.Wrap(services.ErrFileRead, sources.StoreAnnotation, "open", path, err))
			continue
		}
		agg.locals = append(agg.locals, store)
	}

	if path, ok := loc.SyncStore(); ok {
		store, err := openSyncStore(ctx, path, log)
		if err != nil {
			openErrs = append(openErrs, services.Wrap(services.ErrFileRead, sources.StoreSync, "open", path, err))
		} else {
			agg.sync = store
		}
	}

	return agg, openErrs
}

// Annotations returns every record for the book: local store records in
// file order followed by sync store expansions. A store that fails to
// answer contributes nothing; its error is joined into the returned error
// while the other stores' records are still returned.
func (a *Aggregator) Annotations(ctx context.Context, bookID string) ([]books.Annotation, error) {
	var out []books.Annotation
	var errs []error

	for _, store := range a.locals {
		records, err := store.annotations(ctx, bookID)
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, records...)
	}

	if a.sync != nil {
		records, err := a.sync.annotations(ctx, bookID)
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, records...)
	}

	return out, errors.Join(errs...)
}

// StoreCount reports how many stores the aggregator is reading from,
// counting the sync store when open.
func (a *Aggregator) StoreCount() int {
	n := len(a.locals)
	if a.sync != nil {
		n++
	}
	return n
}

// Close releases every open store connection.
func (a *Aggregator) Close() error {
	var errs []error
	for _, store := range a.locals {
		if err := store.close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.locals = nil
	if a.sync != nil {
		if err := a.sync.close(); err != nil {
			errs = append(errs, err)
		}
		a.sync = nil
	}
	return errors.Join(errs...)
}
