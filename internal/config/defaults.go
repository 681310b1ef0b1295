package config

const (
	defaultCatalogDir        = "~/Library/Containers/com.apple.iBooksX/Data/Documents/BKLibrary"
	defaultAnnotationDir     = "~/Library/Containers/com.apple.iBooksX/Data/Documents/AEAnnotation"
	defaultLibraryTTLMinutes = 60
	defaultBookTTLMinutes    = 5
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultWatchDebounceMS   = 500
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Stores: Stores{
			CatalogDir:    defaultCatalogDir,
			AnnotationDir: defaultAnnotationDir,
		},
		Cache: Cache{
			Dir:               defaultCacheDir(),
			LibraryTTLMinutes: defaultLibraryTTLMinutes,
			BookTTLMinutes:    defaultBookTTLMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Watch: Watch{
			DebounceMS: defaultWatchDebounceMS,
		},
	}
}
