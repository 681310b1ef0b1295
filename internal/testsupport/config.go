package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"marginalia/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The catalog and annotation store directories exist but start empty; seed
// them with SeedCatalog and SeedAnnotations.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Stores.CatalogDir = filepath.Join(base, "catalog")
	cfgVal.Stores.AnnotationDir = filepath.Join(base, "annotations")
	cfgVal.Stores.SyncPath = ""
	cfgVal.Cache.Dir = filepath.Join(base, "cache")
	cfgVal.Logging.Dir = ""

	for _, dir := range []string{cfgVal.Stores.CatalogDir, cfgVal.Stores.AnnotationDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSyncPath points the config at an explicit sync store file.
func WithSyncPath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Stores.SyncPath = path
	}
}

// WithLibraryTTLMinutes overrides the durable cache TTL.
func WithLibraryTTLMinutes(minutes int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.LibraryTTLMinutes = minutes
	}
}

// WithBookTTLMinutes overrides the fast cache TTL.
func WithBookTTLMinutes(minutes int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.BookTTLMinutes = minutes
	}
}
