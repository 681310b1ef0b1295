package covers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marginalia/internal/testsupport"
)

func TestResolveDirectURLPassesThrough(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	ref, ok := resolver.Resolve("book-1", "https://covers.example.com/book-1.jpg", "")
	if !ok {
		t.Fatal("direct URL should resolve")
	}
	if ref != "https://covers.example.com/book-1.jpg" {
		t.Errorf("direct URL should pass through unchanged, got %q", ref)
	}
}

func TestResolveNoReferenceNoPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	if _, ok := resolver.Resolve("book-1", "", ""); ok {
		t.Error("nothing to resolve from should report no cover")
	}
}

func TestResolveNonEPUBPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	if _, ok := resolver.Resolve("book-1", "", "/library/book.pdf"); ok {
		t.Error("non-EPUB paths should report no cover")
	}
}

func TestResolveExtractsConventionalCover(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	epubPath := filepath.Join(t.TempDir(), "book.epub")
	testsupport.WriteEPUB(t, epubPath, map[string][]byte{
		"mimetype":        []byte("application/epub+zip"),
		"OEBPS/cover.jpg": []byte("jpeg-bytes"),
		"OEBPS/ch1.xhtml": []byte("<html/>"),
	})

	ref, ok := resolver.Resolve("book-1", "", epubPath)
	if !ok {
		t.Fatal("cover should be extracted from the archive")
	}
	if filepath.Dir(ref) != cfg.CoversDir() {
		t.Errorf("cover should land in the covers dir, got %q", ref)
	}
	if filepath.Base(ref) != "book-1.jpg" {
		t.Errorf("cover name mismatch: got %q", filepath.Base(ref))
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		t.Fatalf("read extracted cover: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("cover content mismatch: got %q", data)
	}
}

func TestResolvePrefersEarlierCandidate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	epubPath := filepath.Join(t.TempDir(), "book.epub")
	testsupport.WriteEPUB(t, epubPath, map[string][]byte{
		"cover.jpg":       []byte("root-cover"),
		"OEBPS/cover.jpg": []byte("nested-cover"),
	})

	ref, ok := resolver.Resolve("book-1", "", epubPath)
	if !ok {
		t.Fatal("cover should be extracted")
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		t.Fatalf("read extracted cover: %v", err)
	}
	if string(data) != "root-cover" {
		t.Errorf("root cover.jpg should win over nested paths, got %q", data)
	}
}

func TestResolveITunesArtworkGetsJPEGExtension(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	epubPath := filepath.Join(t.TempDir(), "book.epub")
	testsupport.WriteEPUB(t, epubPath, map[string][]byte{
		"iTunesArtwork": []byte("artwork"),
	})

	ref, ok := resolver.Resolve("book-1", "", epubPath)
	if !ok {
		t.Fatal("iTunesArtwork should resolve")
	}
	if filepath.Base(ref) != "book-1.jpg" {
		t.Errorf("extensionless artwork should cache as .jpg, got %q", filepath.Base(ref))
	}
}

func TestResolveFallsBackToFirstImage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	epubPath := filepath.Join(t.TempDir(), "book.epub")
	testsupport.WriteEPUB(t, epubPath, map[string][]byte{
		"OEBPS/images/zz-last.png":   []byte("last"),
		"OEBPS/images/aa-first.png":  []byte("first"),
		"OEBPS/images/manifest.json": []byte("{}"),
	})

	ref, ok := resolver.Resolve("book-1", "", epubPath)
	if !ok {
		t.Fatal("fallback image should resolve")
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		t.Fatalf("read extracted cover: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("lexicographically first image should win, got %q", data)
	}
	if filepath.Ext(ref) != ".png" {
		t.Errorf("fallback should keep its extension, got %q", ref)
	}
}

func TestResolveNoImagesInArchive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	epubPath := filepath.Join(t.TempDir(), "book.epub")
	testsupport.WriteEPUB(t, epubPath, map[string][]byte{
		"mimetype":        []byte("application/epub+zip"),
		"OEBPS/ch1.xhtml": []byte("<html/>"),
	})

	if _, ok := resolver.Resolve("book-1", "", epubPath); ok {
		t.Error("archive without images should report no cover")
	}
}

func TestResolveCorruptArchive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	epubPath := filepath.Join(t.TempDir(), "book.epub")
	if err := os.WriteFile(epubPath, []byte("not a zip archive"), 0o644); err != nil {
		t.Fatalf("write corrupt archive: %v", err)
	}

	if _, ok := resolver.Resolve("book-1", "", epubPath); ok {
		t.Error("corrupt archive should report no cover, not fail")
	}
}

func TestResolveBadReferenceFallsBackToArchive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	epubPath := filepath.Join(t.TempDir(), "book.epub")
	testsupport.WriteEPUB(t, epubPath, map[string][]byte{
		"cover.jpg": []byte("from-archive"),
	})

	ref, ok := resolver.Resolve("book-1", "not a url at all", epubPath)
	if !ok {
		t.Fatal("archive fallback should resolve")
	}
	if !strings.HasPrefix(ref, cfg.CoversDir()) {
		t.Errorf("fallback cover should come from the covers dir, got %q", ref)
	}
}

func TestSafeEntryName(t *testing.T) {
	cases := []struct {
		name string
		want string
		ok   bool
	}{
		{"OEBPS/cover.jpg", "OEBPS/cover.jpg", true},
		{"cover.jpg", "cover.jpg", true},
		{"a/../b.jpg", "b.jpg", true},
		{"../escape.jpg", "", false},
		{"/absolute.jpg", "", false},
		{"..", "", false},
		{"a/../../escape.jpg", "", false},
		{".", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := safeEntryName(tc.name)
		if ok != tc.ok {
			t.Errorf("safeEntryName(%q) ok = %v, want %v", tc.name, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("safeEntryName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveSkipsTraversalEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(cfg, nil)

	epubPath := filepath.Join(t.TempDir(), "book.epub")
	testsupport.WriteEPUB(t, epubPath, map[string][]byte{
		"../../evil/cover.jpg": []byte("evil"),
		"cover.jpg":            []byte("good"),
	})

	ref, ok := resolver.Resolve("book-1", "", epubPath)
	if !ok {
		t.Fatal("safe entries should still resolve")
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		t.Fatalf("read extracted cover: %v", err)
	}
	if string(data) != "good" {
		t.Errorf("traversal entry must not win, got %q", data)
	}
}
