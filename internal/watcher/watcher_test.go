package watcher

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"marginalia/internal/testsupport"
)

func TestWatcherEmitsDebouncedChange(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Watch.DebounceMS = 50

	w, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	target := filepath.Join(cfg.Stores.CatalogDir, "library.sqlite")
	testsupport.WriteFile(t, target, 64)

	select {
	case change := <-w.Changes():
		if len(change.Paths) == 0 {
			t.Error("change notification should carry the settled paths")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification for a store file write")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Watch.DebounceMS = 50

	w, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	testsupport.WriteFile(t, filepath.Join(cfg.Stores.CatalogDir, "notes.txt"), 64)

	select {
	case change := <-w.Changes():
		t.Errorf("non-store file should not notify, got %v", change.Paths)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Watch.DebounceMS = 100

	w, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	names := []string{"a.sqlite", "a.sqlite-wal", "a.sqlite-shm"}
	for _, name := range names {
		testsupport.WriteFile(t, filepath.Join(cfg.Stores.AnnotationDir, name), 32)
	}

	seen := map[string]struct{}{}
	deadline := time.After(3 * time.Second)
	for len(seen) < len(names) {
		select {
		case change := <-w.Changes():
			for _, path := range change.Paths {
				seen[filepath.Base(path)] = struct{}{}
			}
		case <-deadline:
			t.Fatalf("burst not fully reported, saw %v", seen)
		}
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	w, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestWatcherRejectsMissingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Stores.CatalogDir = filepath.Join(t.TempDir(), "gone")

	if _, err := New(cfg, nil); err == nil {
		t.Fatal("watching a missing directory should fail")
	}
}
