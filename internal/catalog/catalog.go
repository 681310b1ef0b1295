package catalog

import (
	"context"
	"database/sql"
	"log/slog"

	"marginalia/internal/logging"
	"marginalia/internal/services"
	"marginalia/internal/sources"
	"marginalia/internal/storedb"
	"marginalia/internal/textutil"
)

// Row is one asset record from a catalog store file.
type Row struct {
	AssetID  string
	Title    string
	Author   string
	Path     string
	CoverURL string
}

// Reader scans catalog store files.
type Reader struct {
	logger *slog.Logger
}

// NewReader constructs a Reader. A nil logger is replaced with a no-op.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logging.NewComponentLogger(logger, "catalog")}
}

const assetQuery = `SELECT ZASSETID, ZTITLE, ZAUTHOR, ZPATH, ZCOVERURL FROM ZBKLIBRARYASSET ORDER BY Z_PK`

// ReadFile scans a single catalog store file and returns its asset rows in
// store order. Open and query failures are wrapped as non-fatal file read
// errors; rows that cannot be scanned are skipped with a debug log.
func (r *Reader) ReadFile(ctx context.Context, path string) ([]Row, error) {
	db, err := storedb.OpenReadOnly(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFileRead, sources.StoreCatalog, "open", path, err)
	}
	defer db.Close()

	var rows *sql.Rows
	err = storedb.RetryOnBusy(ctx, func() error {
		var queryErr error
		rows, queryErr = db.QueryContext(ctx, assetQuery)
		return queryErr
	})
	if err != nil {
		return nil, services.Wrap(services.ErrFileRead, sources.StoreCatalog, "query", path, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var assetID, title, author, bookPath, coverURL sql.NullString
		if err := rows.Scan(&assetID, &title, &author, &bookPath, &coverURL); err != nil {
			r.logger.Debug("skipping unreadable catalog row",
				logging.String(logging.FieldPath, path),
				logging.Error(err))
			continue
		}
		if !assetID.Valid || assetID.String == "" {
			continue
		}
		row := Row{
			AssetID:  assetID.String,
			Title:    title.String,
			Author:   author.String,
			Path:     bookPath.String,
			CoverURL: coverURL.String,
		}
		if row.Title == "" {
			row.Title = textutil.DeriveTitle(row.Path)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return out, services.Wrap(services.ErrFileRead, sources.StoreCatalog, "scan", path, err)
	}
	return out, nil
}
