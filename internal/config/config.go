package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Stores contains the locations of the read-only source stores.
type Stores struct {
	CatalogDir    string `toml:"catalog_dir"`
	AnnotationDir string `toml:"annotation_dir"`
	SyncPath      string `toml:"sync_path"`
}

// Cache contains configuration for the two-tier result cache.
type Cache struct {
	Dir               string `toml:"dir"`
	LibraryTTLMinutes int    `toml:"library_ttl_minutes"`
	BookTTLMinutes    int    `toml:"book_ttl_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Watch contains configuration for store-change watching.
type Watch struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Config encapsulates all configuration values for marginalia.
//
// Configuration sections by subsystem:
//   - Stores: catalog/annotation store directories and the optional sync store
//   - Cache: cache directory plus durable and per-book TTLs
//   - Logging: log format, level, and optional log directory
//   - Watch: debounce interval for store-change watching
type Config struct {
	Stores  Stores  `toml:"stores"`
	Cache   Cache   `toml:"cache"`
	Logging Logging `toml:"logging"`
	Watch   Watch   `toml:"watch"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marginalia/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. A missing file is not an error;
// defaults apply and exists reports false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marginalia.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache directories marginalia writes to. Source
// store directories are never created; they belong to the reading app.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Cache.Dir, c.CoversDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LibraryTTL returns the durable cache document lifetime.
func (c *Config) LibraryTTL() time.Duration {
	return time.Duration(c.Cache.LibraryTTLMinutes) * time.Minute
}

// BookTTL returns the per-book fast cache lifetime.
func (c *Config) BookTTL() time.Duration {
	return time.Duration(c.Cache.BookTTLMinutes) * time.Minute
}

// WatchDebounce returns the quiet period applied to store-change bursts.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// LibraryDocumentPath returns the location of the durable cache document.
func (c *Config) LibraryDocumentPath() string {
	return filepath.Join(c.Cache.Dir, "library.json")
}

// CoversDir returns the directory cached cover images are copied into.
func (c *Config) CoversDir() string {
	return filepath.Join(c.Cache.Dir, "covers")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "marginalia")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/marginalia"
	}
	return filepath.Join(home, ".cache", "marginalia")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
