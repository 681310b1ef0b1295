package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"marginalia/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCatalog := filepath.Join(tempHome, "Library", "Containers", "com.apple.iBooksX", "Data", "Documents", "BKLibrary")
	if cfg.Stores.CatalogDir != wantCatalog {
		t.Fatalf("unexpected catalog dir: got %q want %q", cfg.Stores.CatalogDir, wantCatalog)
	}
	wantAnnotation := filepath.Join(tempHome, "Library", "Containers", "com.apple.iBooksX", "Data", "Documents", "AEAnnotation")
	if cfg.Stores.AnnotationDir != wantAnnotation {
		t.Fatalf("unexpected annotation dir: %q", cfg.Stores.AnnotationDir)
	}
	if cfg.Stores.SyncPath != "" {
		t.Fatalf("expected empty sync path by default, got %q", cfg.Stores.SyncPath)
	}
	if cfg.Cache.Dir != filepath.Join(tempHome, ".cache", "marginalia") {
		t.Fatalf("unexpected cache dir: %q", cfg.Cache.Dir)
	}
	if cfg.LibraryTTL() != time.Hour {
		t.Fatalf("unexpected library TTL: %s", cfg.LibraryTTL())
	}
	if cfg.BookTTL() != 5*time.Minute {
		t.Fatalf("unexpected book TTL: %s", cfg.BookTTL())
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.WatchDebounce() != 500*time.Millisecond {
		t.Fatalf("unexpected watch debounce: %s", cfg.WatchDebounce())
	}
	if cfg.LibraryDocumentPath() != filepath.Join(cfg.Cache.Dir, "library.json") {
		t.Fatalf("unexpected library document path: %q", cfg.LibraryDocumentPath())
	}
	if cfg.CoversDir() != filepath.Join(cfg.Cache.Dir, "covers") {
		t.Fatalf("unexpected covers dir: %q", cfg.CoversDir())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Cache.Dir, cfg.CoversDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "marginalia.toml")

	type payload struct {
		Stores struct {
			CatalogDir    string `toml:"catalog_dir"`
			AnnotationDir string `toml:"annotation_dir"`
			SyncPath      string `toml:"sync_path"`
		} `toml:"stores"`
		Cache struct {
			Dir               string `toml:"dir"`
			LibraryTTLMinutes int    `toml:"library_ttl_minutes"`
			BookTTLMinutes    int    `toml:"book_ttl_minutes"`
		} `toml:"cache"`
	}
	custom := payload{}
	custom.Stores.CatalogDir = filepath.Join(tempDir, "catalog")
	custom.Stores.AnnotationDir = filepath.Join(tempDir, "annotations")
	custom.Stores.SyncPath = filepath.Join(tempDir, "sync.sqlite")
	custom.Cache.Dir = filepath.Join(tempDir, "cache")
	custom.Cache.LibraryTTLMinutes = 120
	custom.Cache.BookTTLMinutes = 10

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Stores.CatalogDir != custom.Stores.CatalogDir {
		t.Fatalf("expected catalog dir from file, got %q", cfg.Stores.CatalogDir)
	}
	if cfg.Stores.SyncPath != custom.Stores.SyncPath {
		t.Fatalf("expected sync path from file, got %q", cfg.Stores.SyncPath)
	}
	if cfg.LibraryTTL() != 2*time.Hour {
		t.Fatalf("expected library TTL 2h, got %s", cfg.LibraryTTL())
	}
	if cfg.BookTTL() != 10*time.Minute {
		t.Fatalf("expected book TTL 10m, got %s", cfg.BookTTL())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"negative library ttl", "[cache]\nlibrary_ttl_minutes = -1\n"},
		{"negative book ttl", "[cache]\nbook_ttl_minutes = -5\n"},
		{"bad log format", "[logging]\nformat = \"yaml\"\n"},
		{"bad log level", "[logging]\nlevel = \"loud\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "marginalia.toml")
			if err := os.WriteFile(configPath, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(configPath); err == nil {
				t.Fatal("expected Load to reject invalid config")
			}
		})
	}
}

func TestNormalizeCoercesLoggingCase(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "marginalia.toml")
	body := "[logging]\nformat = \"JSON\"\nlevel = \"Debug\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased format, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased level, got %q", cfg.Logging.Level)
	}
}

func TestXDGCacheHomeOverridesCacheDir(t *testing.T) {
	tempHome := t.TempDir()
	xdg := filepath.Join(tempHome, "xdg-cache")
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", xdg)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Cache.Dir != filepath.Join(xdg, "marginalia") {
		t.Fatalf("expected XDG cache dir, got %q", cfg.Cache.Dir)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "library_ttl_minutes") {
		t.Fatalf("sample config missing cache knobs: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Stores.CatalogDir, "BKLibrary") {
		t.Fatalf("expected catalog dir default in sample, got %q", cfg.Stores.CatalogDir)
	}
}
