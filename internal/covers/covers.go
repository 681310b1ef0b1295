package covers

import (
	"archive/zip"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"marginalia/internal/config"
	"marginalia/internal/fileutil"
	"marginalia/internal/logging"
	"marginalia/internal/textutil"
)

// coverCandidates are the conventional archive paths probed in order.
var coverCandidates = []string{
	"iTunesArtwork",
	"cover.jpg",
	"cover.jpeg",
	"cover.png",
	"OEBPS/cover.jpg",
	"OPS/cover.jpg",
	"OEBPS/images/cover.jpg",
	"OPS/images/cover.jpg",
}

// imageDirs are probed for a fallback when no conventional path matches.
var imageDirs = []string{
	"OEBPS/images",
	"OPS/images",
	"images",
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

// Resolver locates cover images for catalog entries and copies extracted
// covers into the cache covers directory.
type Resolver struct {
	coversDir string
	logger    *slog.Logger
}

// NewResolver builds a resolver writing into the configured covers directory.
func NewResolver(cfg *config.Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		coversDir: cfg.CoversDir(),
		logger:    logging.NewComponentLogger(logger, "covers"),
	}
}

// Resolve returns a cover reference for the book, preferring the catalog's
// direct reference and falling back to extraction from the book's EPUB
// archive. The second return is false when no cover could be found.
func (r *Resolver) Resolve(bookID, directRef, bookPath string) (string, bool) {
	if ref := strings.TrimSpace(directRef); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
			return ref, true
		}
		r.logger.Debug("cover reference is not a URL, trying archive",
			logging.String("book_id", bookID),
			logging.String("reference", ref))
	}

	if !strings.EqualFold(filepath.Ext(bookPath), ".epub") {
		return "", false
	}

	cached, err := r.extractFromEPUB(bookID, bookPath)
	if err != nil {
		r.logger.Debug("cover extraction failed",
			logging.String("book_id", bookID),
			logging.String("path", bookPath),
			logging.Error(err))
		return "", false
	}
	if cached == "" {
		r.logger.Debug("no cover found in archive",
			logging.String("book_id", bookID),
			logging.String("path", bookPath))
		return "", false
	}
	return cached, true
}

// extractFromEPUB unpacks the archive into a scratch directory, picks the
// best cover image, and copies it into the covers directory. Returns ""
// when the archive holds no usable image.
func (r *Resolver) extractFromEPUB(bookID, epubPath string) (string, error) {
	scratch, err := os.MkdirTemp("", "marginalia-cover-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(scratch)

	if err := unpackArchive(epubPath, scratch); err != nil {
		return "", err
	}

	source, ok := findCover(scratch)
	if !ok {
		return "", nil
	}

	if err := os.MkdirAll(r.coversDir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(source))
	if ext == "" {
		// iTunesArtwork entries are JPEG data without an extension.
		ext = ".jpg"
	}
	target := filepath.Join(r.coversDir, textutil.SanitizeToken(bookID)+ext)
	if err := fileutil.CopyFile(source, target); err != nil {
		return "", err
	}

	r.logger.Debug("extracted cover",
		logging.String("book_id", bookID),
		logging.String("cover", target))
	return target, nil
}

// unpackArchive extracts every regular file in the zip into root, skipping
// entries whose names would escape it.
func unpackArchive(archivePath, root string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		cleaned, ok := safeEntryName(entry.Name)
		if !ok {
			continue
		}
		dest := filepath.Join(root, filepath.FromSlash(cleaned))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := extractEntry(entry, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(entry *zip.File, dest string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return err
	}
	return out.Close()
}

// safeEntryName rejects absolute entry names and names that climb out of
// the extraction root.
func safeEntryName(name string) (string, bool) {
	cleaned := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if cleaned == "" || cleaned == "." || path.IsAbs(cleaned) {
		return "", false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}

// findCover probes the conventional cover paths in order, then falls back
// to the first image inside an images directory.
func findCover(root string) (string, bool) {
	for _, candidate := range coverCandidates {
		probe := filepath.Join(root, filepath.FromSlash(candidate))
		if info, err := os.Stat(probe); err == nil && !info.IsDir() && info.Size() > 0 {
			return probe, true
		}
	}

	for _, dir := range imageDirs {
		entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, ok := imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
				continue
			}
			return filepath.Join(root, filepath.FromSlash(dir), entry.Name()), true
		}
	}

	return "", false
}
