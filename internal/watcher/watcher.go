package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"marginalia/internal/config"
	"marginalia/internal/logging"
	"marginalia/internal/sources"
)

// Change describes one debounced batch of store modifications.
type Change struct {
	Paths []string
}

// Watcher monitors the store directories for modifications.
type Watcher struct {
	logger   *slog.Logger
	debounce time.Duration
	fsw      *fsnotify.Watcher
	changes  chan Change

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer

	closeOnce sync.Once
}

// New builds a watcher over the configured store directories. The sync
// store's directory is watched too when it lives outside the annotation
// directory.
func New(cfg *config.Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create store watcher: %w", err)
	}

	w := &Watcher{
		logger:   logging.NewComponentLogger(logger, "watcher"),
		debounce: cfg.WatchDebounce(),
		fsw:      fsw,
		changes:  make(chan Change, 1),
		pending:  make(map[string]struct{}),
	}

	loc := sources.FromConfig(cfg)
	dirs := []string{loc.CatalogDir, loc.AnnotationDir}
	if loc.SyncPath != "" {
		if dir := filepath.Dir(loc.SyncPath); dir != loc.AnnotationDir {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.Debug("watching store directory", logging.String("path", dir))
	}

	return w, nil
}

// Changes returns the notification channel. At most one notification is
// queued; bursts arriving while the consumer is busy fold into it.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run processes filesystem events until ctx is cancelled. It owns the
// underlying watcher and closes it on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.note(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("store watch error", logging.Error(err))
		}
	}
}

// Close stops the timer and releases the underlying watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.mu.Unlock()
		err = w.fsw.Close()
	})
	return err
}

// note records a relevant event and (re)arms the debounce timer.
func (w *Watcher) note(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	// SQLite stores, their -wal/-shm sidecars, and plist sync payloads are
	// the only signal.
	base := filepath.Base(event.Name)
	if !strings.Contains(base, ".sqlite") && !strings.HasSuffix(base, ".plist") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[event.Name] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	} else {
		w.timer.Reset(w.debounce)
	}
}

// flush publishes the settled batch. When a notification is already
// queued the batch is dropped; the unread notification wakes the consumer,
// which reads the current store state anyway.
func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	select {
	case w.changes <- Change{Paths: paths}:
		w.logger.Debug("store changes settled", logging.Int("path_count", len(paths)))
	default:
		w.logger.Debug("change notification already queued, batch dropped")
	}
}
