package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marginalia/internal/config"
	"marginalia/internal/testsupport"
)

// runCLI executes the root command with captured output. configPath,
// when non-empty, is passed via the persistent --config flag.
func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	full := args
	if configPath != "" {
		full = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(full)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

// writeTestConfig persists cfg as a TOML file the CLI can load. Logging
// is pinned to error level so command output stays inspectable.
func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	var content strings.Builder
	fmt.Fprintf(&content, "[stores]\ncatalog_dir = %q\nannotation_dir = %q\n", cfg.Stores.CatalogDir, cfg.Stores.AnnotationDir)
	if cfg.Stores.SyncPath != "" {
		fmt.Fprintf(&content, "sync_path = %q\n", cfg.Stores.SyncPath)
	}
	fmt.Fprintf(&content, "\n[cache]\ndir = %q\n", cfg.Cache.Dir)
	content.WriteString("\n[logging]\nformat = \"console\"\nlevel = \"error\"\n")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

// seedLibrary populates the config's stores with a single book carrying
// one highlight and returns the config file path for runCLI.
func seedLibrary(t *testing.T, cfg *config.Config) string {
	t.Helper()

	testsupport.SeedCatalog(t, filepath.Join(cfg.Stores.CatalogDir, "Books.sqlite"), []testsupport.CatalogRow{
		{AssetID: "book-1", Title: "Moby Dick", Author: "Herman Melville"},
	})
	testsupport.SeedAnnotations(t, filepath.Join(cfg.Stores.AnnotationDir, "AEAnnotation.sqlite"), []testsupport.AnnotationRow{
		{AssetID: "book-1", Quote: "Call me Ishmael.", Style: 3, Modified: 700000000},
	})
	return writeTestConfig(t, cfg)
}
