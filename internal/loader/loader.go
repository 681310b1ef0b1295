package loader

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"marginalia/internal/annotations"
	"marginalia/internal/books"
	"marginalia/internal/catalog"
	"marginalia/internal/config"
	"marginalia/internal/covers"
	"marginalia/internal/librarycache"
	"marginalia/internal/logging"
	"marginalia/internal/services"
	"marginalia/internal/sources"
)

// Loader drives progressive library loads over the configured stores.
type Loader struct {
	cfg        *config.Config
	locations  sources.Locations
	catalog    *catalog.Reader
	covers     *covers.Resolver
	cache      *librarycache.Store
	logger     *slog.Logger
	baseLogger *slog.Logger

	mu       sync.RWMutex
	phase    Phase
	progress float64
	lastErr  error
}

// New constructs a loader sharing the given cache store handle.
func New(cfg *config.Config, cache *librarycache.Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Loader{
		cfg:        cfg,
		locations:  sources.FromConfig(cfg),
		catalog:    catalog.NewReader(logger),
		covers:     covers.NewResolver(cfg, logger),
		cache:      cache,
		logger:     logging.NewComponentLogger(logger, "loader"),
		baseLogger: logger,
	}
}

// Cache returns the cache store handle the loader was built with.
func (l *Loader) Cache() *librarycache.Store {
	return l.cache
}

// Load starts a progressive load and returns its event stream. The channel
// is unbuffered: the producer goroutine blocks on the consumer and checks
// ctx at every emission point, so cancelling ctx stops the load promptly.
// Callers must drain the channel. Loads are not serialized against each
// other; run one load at a time.
func (l *Loader) Load(ctx context.Context) <-chan Event {
	events := make(chan Event)
	go l.run(ctx, events, false)
	return events
}

// Refresh invalidates both cache tiers and starts a full rescan.
func (l *Loader) Refresh(ctx context.Context) <-chan Event {
	if err := l.cache.Invalidate(); err != nil {
		l.logger.Warn("cache invalidation failed, forcing rescan anyway", logging.Error(err))
	}
	events := make(chan Event)
	go l.run(ctx, events, true)
	return events
}

// LoadAll runs a load to completion and returns every book. The error is
// the fatal validation failure when the load could not start, ctx.Err()
// when cancelled, or the joined per-file failures of an otherwise
// successful load (nil when the load was clean). services.Fatal
// distinguishes the first case.
func (l *Loader) LoadAll(ctx context.Context) ([]books.Book, error) {
	var (
		loaded    []books.Book
		errs      []error
		completed bool
	)
	for event := range l.Load(ctx) {
		switch event.Kind {
		case EventBook:
			loaded = append(loaded, event.Book)
		case EventError:
			errs = append(errs, event.Err)
		case EventCompleted:
			completed = true
		}
	}
	if !completed {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}
		if err := l.LastError(); err != nil {
			return nil, err
		}
	}
	return loaded, errors.Join(errs...)
}

// Phase reports the current lifecycle phase.
func (l *Loader) Phase() Phase {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phase
}

// Progress reports load progress as a fraction of catalog files fully
// processed, in [0, 1].
func (l *Loader) Progress() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.progress
}

// LastError returns the fatal error retained from the last failed load,
// or nil. It is cleared by the next load request or ClearError.
func (l *Loader) LastError() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

// ClearError discards the retained fatal error.
func (l *Loader) ClearError() {
	l.mu.Lock()
	l.lastErr = nil
	l.mu.Unlock()
}

func (l *Loader) run(ctx context.Context, events chan<- Event, skipReplay bool) {
	defer close(events)
	defer l.noteCancellation(ctx)

	loadID := uuid.NewString()
	ctx = services.WithLoadID(ctx, loadID)
	logger := logging.WithContext(ctx, l.logger)

	l.begin()

	if !skipReplay && l.cache.Fresh() {
		if doc, ok := l.cache.Load(); ok {
			l.replay(ctx, events, doc, logger)
			return
		}
	}

	if err := sources.Validate(l.locations); err != nil {
		logger.Error("source validation failed", logging.Error(err))
		l.fail(err)
		l.emit(ctx, events, Event{Kind: EventError, Err: err})
		return
	}

	l.setPhase(PhaseScanning)

	files, err := sources.CatalogFiles(l.locations)
	if err != nil {
		logger.Error("catalog enumeration failed", logging.Error(err))
		l.fail(err)
		l.emit(ctx, events, Event{Kind: EventError, Err: err})
		return
	}

	agg, openErrs := annotations.Open(ctx, l.locations, l.baseLogger)
	defer agg.Close()
	for _, openErr := range openErrs {
		logger.Warn("annotation store unavailable", logging.Error(openErr))
		if !l.emit(ctx, events, Event{Kind: EventError, Err: openErr}) {
			return
		}
	}

	logger.Info("scanning library",
		logging.Int("catalog_files", len(files)),
		logging.Int("annotation_stores", agg.StoreCount()))

	l.setPhase(PhaseStreaming)

	var loaded []books.Book
	for i, file := range files {
		rows, err := l.catalog.ReadFile(ctx, file)
		if err != nil {
			logger.Warn("catalog file failed", logging.String("path", file), logging.Error(err))
			if !l.emit(ctx, events, Event{Kind: EventError, Err: err}) {
				return
			}
			l.advance(i+1, len(files))
			continue
		}

		for _, row := range rows {
			book, hit := l.cache.FastGet(row.AssetID)
			if !hit {
				var assembleErr error
				book, assembleErr = l.assemble(ctx, row, agg)
				if assembleErr != nil {
					logger.Warn("annotation lookup incomplete",
						logging.String("book_id", row.AssetID),
						logging.Error(assembleErr))
					if !l.emit(ctx, events, Event{Kind: EventError, Err: assembleErr}) {
						return
					}
				}
				l.cache.FastPut(book)
			}
			loaded = append(loaded, book)
			if !l.emit(ctx, events, Event{Kind: EventBook, Book: book}) {
				return
			}
		}

		l.advance(i+1, len(files))
	}

	if ctx.Err() != nil {
		return
	}

	if err := l.cache.Save(loaded); err != nil {
		// Books were already delivered; a failed persist only costs the
		// next run its replay.
		logger.Warn("failed to persist library cache", logging.Error(err))
	}
	l.cache.MarkCompleted(time.Now())
	l.complete()

	logger.Info("load completed", logging.Int("book_count", len(loaded)))
	l.emit(ctx, events, Event{Kind: EventCompleted, Total: len(loaded)})
}

// replay streams the cached document without touching any source file.
func (l *Loader) replay(ctx context.Context, events chan<- Event, doc *librarycache.Document, logger *slog.Logger) {
	l.setPhase(PhaseReplaying)
	logger.Info("replaying cached library",
		logging.Int("book_count", len(doc.Books)),
		logging.Time("cached_at", doc.UpdatedAt))

	for _, book := range doc.Books {
		if !l.emit(ctx, events, Event{Kind: EventBook, Book: book}) {
			return
		}
	}

	l.complete()
	l.emit(ctx, events, Event{Kind: EventCompleted, Total: len(doc.Books)})
}

// assemble builds one book from its catalog row: cover resolution first,
// then the merged annotations. The returned error carries any non-fatal
// annotation store failures; the book is still usable.
func (l *Loader) assemble(ctx context.Context, row catalog.Row, agg *annotations.Aggregator) (books.Book, error) {
	ctx = services.WithBookID(ctx, row.AssetID)

	book := books.Book{
		ID:          row.AssetID,
		Title:       row.Title,
		Author:      row.Author,
		Path:        row.Path,
		Annotations: []books.Annotation{},
	}
	if ref, ok := l.covers.Resolve(row.AssetID, row.CoverURL, row.Path); ok {
		book.CoverPath = ref
	}

	records, err := agg.Annotations(ctx, row.AssetID)
	if len(records) > 0 {
		book.Annotations = records
	}
	return book, err
}

// emit delivers one event unless the consumer's context ends first.
func (l *Loader) emit(ctx context.Context, events chan<- Event, event Event) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (l *Loader) begin() {
	l.mu.Lock()
	l.phase = PhaseValidating
	l.progress = 0
	l.lastErr = nil
	l.mu.Unlock()
}

func (l *Loader) setPhase(phase Phase) {
	l.mu.Lock()
	l.phase = phase
	l.mu.Unlock()
}

func (l *Loader) advance(processed, total int) {
	if total <= 0 {
		return
	}
	l.mu.Lock()
	l.progress = float64(processed) / float64(total)
	l.mu.Unlock()
}

func (l *Loader) fail(err error) {
	l.mu.Lock()
	l.phase = PhaseFailed
	l.lastErr = err
	l.mu.Unlock()
}

func (l *Loader) complete() {
	l.mu.Lock()
	l.phase = PhaseCompleted
	l.progress = 1
	l.mu.Unlock()
}

// noteCancellation resets a cancelled load to idle so a stale phase is
// never reported after the stream closes.
func (l *Loader) noteCancellation(ctx context.Context) {
	if ctx.Err() == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase != PhaseCompleted && l.phase != PhaseFailed {
		l.phase = PhaseIdle
	}
}
