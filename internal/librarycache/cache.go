package librarycache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"marginalia/internal/books"
	"marginalia/internal/config"
	"marginalia/internal/logging"
	"marginalia/internal/services"
)

// Document is the durable cache payload written to library.json.
type Document struct {
	Books     []books.Book `json:"books"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Stats summarizes cache contents for the status command.
type Stats struct {
	DocumentPath    string    `json:"document_path"`
	DocumentExists  bool      `json:"document_exists"`
	DocumentBytes   int64     `json:"document_bytes"`
	Fresh           bool      `json:"fresh"`
	UpdatedAt       time.Time `json:"updated_at"`
	BookCount       int       `json:"book_count"`
	AnnotationCount int       `json:"annotation_count"`
	FastEntries     int       `json:"fast_entries"`
	CoverCount      int       `json:"cover_count"`
	CoverBytes      int64     `json:"cover_bytes"`
}

// Store owns both cache tiers. Durable writes go through a file lock next
// to the document so only one process rewrites it at a time; the fast tier
// is guarded by the store's own mutex.
type Store struct {
	path       string
	coversDir  string
	libraryTTL time.Duration
	bookTTL    time.Duration
	logger     *slog.Logger
	lock       *flock.Flock

	mu            sync.RWMutex
	fast          map[string]books.Book
	lastCompleted time.Time

	now func() time.Time
}

// NewStore builds the cache store for the configured cache directory.
func NewStore(cfg *config.Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}

	path := cfg.LibraryDocumentPath()
	return &Store{
		path:       path,
		coversDir:  cfg.CoversDir(),
		libraryTTL: cfg.LibraryTTL(),
		bookTTL:    cfg.BookTTL(),
		logger:     logging.NewComponentLogger(logger, "librarycache"),
		lock:       flock.New(path + ".lock"),
		fast:       make(map[string]books.Book),
		now:        time.Now,
	}
}

// Path returns the location of the durable cache document.
func (s *Store) Path() string {
	return s.path
}

// Fresh reports whether the durable document exists and its timestamp is
// within the library TTL.
func (s *Store) Fresh() bool {
	doc, ok := s.Load()
	if !ok {
		return false
	}
	return s.now().Sub(doc.UpdatedAt) <= s.libraryTTL
}

// Load reads the durable document from disk. Any read or parse failure is
// reported as a miss after logging a warning; a damaged cache never stops
// a scan.
func (s *Store) Load() (*Document, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read library cache",
				logging.String("path", s.path),
				logging.Error(services.Wrap(services.ErrCacheCorrupt, "", "read cache", "unreadable cache document", err)))
		}
		return nil, false
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("failed to parse library cache",
			logging.String("path", s.path),
			logging.Error(services.Wrap(services.ErrCacheCorrupt, "", "parse cache", "malformed cache document", err)))
		return nil, false
	}
	if doc.UpdatedAt.IsZero() {
		s.logger.Warn("library cache document has no timestamp", logging.String("path", s.path))
		return nil, false
	}

	return &doc, true
}

// Save atomically replaces the durable document with the given books and
// stamps it with the current time.
func (s *Store) Save(list []books.Book) error {
	doc := Document{Books: list, UpdatedAt: s.now()}
	if doc.Books == nil {
		doc.Books = []books.Book{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal library cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer s.unlock()

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.logger.Debug("saved library cache",
		logging.Int("book_count", len(doc.Books)),
		logging.String("path", s.path))
	return nil
}

// Invalidate removes the durable document and forgets everything the fast
// tier knows. The next load scans the stores from scratch.
func (s *Store) Invalidate() error {
	s.mu.Lock()
	s.fast = make(map[string]books.Book)
	s.lastCompleted = time.Time{}
	s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer s.unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache document: %w", err)
	}

	s.logger.Debug("invalidated library cache", logging.String("path", s.path))
	return nil
}

// FastGet returns the fast-tier entry for the book. Entries are honored
// only while the last completed load is within the book TTL.
func (s *Store) FastGet(bookID string) (books.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastCompleted.IsZero() || s.now().Sub(s.lastCompleted) > s.bookTTL {
		return books.Book{}, false
	}
	book, ok := s.fast[bookID]
	return book, ok
}

// FastPut records a freshly assembled book in the fast tier.
func (s *Store) FastPut(book books.Book) {
	if strings.TrimSpace(book.ID) == "" {
		return
	}

	s.mu.Lock()
	s.fast[book.ID] = book
	s.mu.Unlock()
}

// MarkCompleted stamps the time the last load finished. Fast-tier lookups
// are answered only while this stamp is within the book TTL.
func (s *Store) MarkCompleted(at time.Time) {
	s.mu.Lock()
	s.lastCompleted = at
	s.mu.Unlock()
}

// Stats reports both tiers plus the cover cache.
func (s *Store) Stats() Stats {
	st := Stats{DocumentPath: s.path}

	if info, err := os.Stat(s.path); err == nil {
		st.DocumentExists = true
		st.DocumentBytes = info.Size()
	}
	if doc, ok := s.Load(); ok {
		st.UpdatedAt = doc.UpdatedAt
		st.BookCount = len(doc.Books)
		for i := range doc.Books {
			st.AnnotationCount += len(doc.Books[i].Annotations)
		}
		st.Fresh = s.now().Sub(doc.UpdatedAt) <= s.libraryTTL
	}

	s.mu.RLock()
	st.FastEntries = len(s.fast)
	s.mu.RUnlock()

	if entries, err := os.ReadDir(s.coversDir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			st.CoverCount++
			st.CoverBytes += info.Size()
		}
	}

	return st
}

// ClearCovers deletes every cached cover image.
func (s *Store) ClearCovers() error {
	entries, err := os.ReadDir(s.coversDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read covers directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.coversDir, entry.Name())); err != nil {
			return fmt.Errorf("remove cached cover: %w", err)
		}
	}
	return nil
}

func (s *Store) unlock() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release cache lock", logging.Error(err))
	}
}
