package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeStores(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeWatch()
	return nil
}

func (c *Config) normalizeStores() error {
	var err error
	if strings.TrimSpace(c.Stores.CatalogDir) == "" {
		c.Stores.CatalogDir = defaultCatalogDir
	}
	if c.Stores.CatalogDir, err = expandPath(c.Stores.CatalogDir); err != nil {
		return fmt.Errorf("stores.catalog_dir: %w", err)
	}
	if strings.TrimSpace(c.Stores.AnnotationDir) == "" {
		c.Stores.AnnotationDir = defaultAnnotationDir
	}
	if c.Stores.AnnotationDir, err = expandPath(c.Stores.AnnotationDir); err != nil {
		return fmt.Errorf("stores.annotation_dir: %w", err)
	}
	c.Stores.SyncPath = strings.TrimSpace(c.Stores.SyncPath)
	if c.Stores.SyncPath != "" {
		if c.Stores.SyncPath, err = expandPath(c.Stores.SyncPath); err != nil {
			return fmt.Errorf("stores.sync_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeCache() error {
	var err error
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir()
	}
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	if c.Cache.LibraryTTLMinutes == 0 {
		c.Cache.LibraryTTLMinutes = defaultLibraryTTLMinutes
	}
	if c.Cache.BookTTLMinutes == 0 {
		c.Cache.BookTTLMinutes = defaultBookTTLMinutes
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "":
		c.Logging.Format = defaultLogFormat
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if dir := strings.TrimSpace(c.Logging.Dir); dir != "" {
		expanded, err := expandPath(dir)
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = expanded
	} else {
		c.Logging.Dir = ""
	}
	return nil
}

func (c *Config) normalizeWatch() {
	if c.Watch.DebounceMS <= 0 {
		c.Watch.DebounceMS = defaultWatchDebounceMS
	}
}
