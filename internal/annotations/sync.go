package annotations

import (
	"context"
	"database/sql"
	"log/slog"

	"marginalia/internal/books"
	"marginalia/internal/services"
	"marginalia/internal/sources"
	"marginalia/internal/storedb"
)

// syncStore is the open secondary sync store, if one exists.
type syncStore struct {
	path   string
	db     *sql.DB
	logger *slog.Logger
}

const syncQuery = `SELECT ZPAYLOAD FROM ZSYNCEDANNOTATION
WHERE ZASSETID = ? AND ZDELETED = 0 AND ZPAYLOAD IS NOT NULL
ORDER BY Z_PK`

func openSyncStore(ctx context.Context, path string, logger *slog.Logger) (*syncStore, error) {
	db, err := storedb.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		db.Close()
		return nil, err
	}
	return &syncStore{path: path, db: db, logger: logger}, nil
}

func (s *syncStore) annotations(ctx context.Context, bookID string) ([]books.Annotation, error) {
	var rows *sql.Rows
	err := storedb.RetryOnBusy(ctx, func() error {
		var queryErr error
		rows, queryErr = s.db.QueryContext(ctx, syncQuery, bookID)
		return queryErr
	})
	if err != nil {
		return nil, services.Wrap(services.ErrFileRead, sources.StoreSync, "query", s.path, err)
	}
	defer rows.Close()

	var out []books.Annotation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			continue
		}
		out = append(out, DecodePayload(payload, bookID, s.logger)...)
	}
	if err := rows.Err(); err != nil {
		return out, services.Wrap(services.ErrFileRead, sources.StoreSync, "scan", s.path, err)
	}
	return out, nil
}

func (s *syncStore) close() error {
	return s.db.Close()
}
