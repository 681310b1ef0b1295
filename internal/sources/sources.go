package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"marginalia/internal/config"
	"marginalia/internal/services"
)

const (
	// StoreCatalog names the catalog store in errors and logs.
	StoreCatalog = "catalog"
	// StoreAnnotation names the annotation store in errors and logs.
	StoreAnnotation = "annotation"
	// StoreSync names the secondary sync store in errors and logs.
	StoreSync = "sync"
)

// syncSuffix marks sync store files living inside the annotation directory.
const syncSuffix = "_sync.sqlite"

// Locations describes where the source stores live. SyncPath may be empty;
// the sync store is optional.
type Locations struct {
	CatalogDir    string
	AnnotationDir string
	SyncPath      string
}

// FromConfig resolves store locations from configuration. When no sync path
// is configured, the first *_sync.sqlite file inside the annotation
// directory is used if one exists.
func FromConfig(cfg *config.Config) Locations {
	loc := Locations{
		CatalogDir:    cfg.Stores.CatalogDir,
		AnnotationDir: cfg.Stores.AnnotationDir,
		SyncPath:      cfg.Stores.SyncPath,
	}
	if loc.SyncPath == "" {
		loc.SyncPath = discoverSyncStore(loc.AnnotationDir)
	}
	return loc
}

func discoverSyncStore(annotationDir string) string {
	entries, err := os.ReadDir(annotationDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), syncSuffix) {
			return filepath.Join(annotationDir, entry.Name())
		}
	}
	return ""
}

// Validate confirms the mandatory store directories exist and are readable.
// The returned error carries services.ErrSourceUnavailable and names the
// first store that failed. The optional sync store is never checked here;
// its absence is not an error.
func Validate(loc Locations) error {
	if err := checkStoreDir(StoreCatalog, loc.CatalogDir); err != nil {
		return err
	}
	return checkStoreDir(StoreAnnotation, loc.AnnotationDir)
}

func checkStoreDir(store, path string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrSourceUnavailable, store, "validate", "store directory not configured", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return services.Wrap(services.ErrSourceUnavailable, store, "validate", fmt.Sprintf("%s does not exist", path), nil)
		}
		return services.Wrap(services.ErrSourceUnavailable, store, "validate", path, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrSourceUnavailable, store, "validate", fmt.Sprintf("%s is not a directory", path), nil)
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrSourceUnavailable, store, "validate", fmt.Sprintf("%s is not readable", path), err)
	}
	return nil
}

// CatalogFiles lists every catalog store file, sorted by name.
func CatalogFiles(loc Locations) ([]string, error) {
	return listStoreFiles(StoreCatalog, loc.CatalogDir, false)
}

// AnnotationFiles lists every annotation store file, sorted by name. Sync
// store files inside the directory are excluded.
func AnnotationFiles(loc Locations) ([]string, error) {
	return listStoreFiles(StoreAnnotation, loc.AnnotationDir, true)
}

func listStoreFiles(store, dir string, excludeSync bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, store, "list", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".sqlite") {
			continue
		}
		if excludeSync && strings.HasSuffix(name, syncSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// SyncStore reports the sync store path and whether a regular file exists
// there. An empty path always reports absent.
func (l Locations) SyncStore() (string, bool) {
	if l.SyncPath == "" {
		return "", false
	}
	info, err := os.Stat(l.SyncPath)
	if err != nil || info.IsDir() {
		return "", false
	}
	return l.SyncPath, true
}
