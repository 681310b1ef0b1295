package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStores(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStores() error {
	if c.Stores.CatalogDir == "" {
		return errors.New("stores.catalog_dir must be set")
	}
	if c.Stores.AnnotationDir == "" {
		return errors.New("stores.annotation_dir must be set")
	}
	if c.Stores.CatalogDir == c.Stores.AnnotationDir {
		return errors.New("stores.catalog_dir and stores.annotation_dir must differ")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Dir == "" {
		return errors.New("cache.dir must be set")
	}
	if c.Cache.LibraryTTLMinutes < 0 {
		return fmt.Errorf("cache.library_ttl_minutes must not be negative, got %d", c.Cache.LibraryTTLMinutes)
	}
	if c.Cache.BookTTLMinutes < 0 {
		return fmt.Errorf("cache.book_ttl_minutes must not be negative, got %d", c.Cache.BookTTLMinutes)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
