package annotations

import (
	"context"
	"database/sql"

	"marginalia/internal/books"
	"marginalia/internal/services"
	"marginalia/internal/sources"
	"marginalia/internal/storedb"
)

// localStore is one open annotation store file.
type localStore struct {
	path string
	db   *sql.DB
}

const localQuery = `SELECT ZANNOTATIONSELECTEDTEXT, ZANNOTATIONNOTE, ZFUTUREPROOFING5,
	ZANNOTATIONSTYLE, ZANNOTATIONMODIFICATIONDATE, ZANNOTATIONCREATIONDATE
FROM ZAEANNOTATION
WHERE ZANNOTATIONASSETID = ? AND ZANNOTATIONDELETED = 0
ORDER BY Z_PK`

func openLocalStore(ctx context.Context, path string) (*localStore, error) {
	db, err := storedb.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	// Probe the schema so a missing or corrupt file fails here, once, rather
	// than on every book.
	var n int
	if err := db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		db.Close()
		return nil, err
	}
	return &localStore{path: path, db: db}, nil
}

func (s *localStore) annotations(ctx context.Context, bookID string) ([]books.Annotation, error) {
	var rows *sql.Rows
	err := storedb.RetryOnBusy(ctx, func() error {
		var queryErr error
		rows, queryErr = s.db.QueryContext(ctx, localQuery, bookID)
		return queryErr
	})
	if err != nil {
		return nil, services.Wrap(services.ErrFileRead, sources.StoreAnnotation, "query", s.path, err)
	}
	defer rows.Close()

	var out []books.Annotation
	for rows.Next() {
		var quote, note, chapter sql.NullString
		var style sql.NullInt64
		var modified, created sql.NullFloat64
		if err := rows.Scan(&quote, &note, &chapter, &style, &modified, &created); err != nil {
			continue
		}
		out = append(out, books.Annotation{
			ID:         books.NewAnnotationID(),
			BookID:     bookID,
			Quote:      quote.String,
			Note:       note.String,
			Chapter:    chapter.String,
			Style:      books.Style(style.Int64),
			ModifiedAt: books.TimeFromAppleSeconds(modified.Float64),
			CreatedAt:  books.TimeFromAppleSeconds(created.Float64),
		})
	}
	if err := rows.Err(); err != nil {
		return out, services.Wrap(services.ErrFileRead, sources.StoreAnnotation, "scan", s.path, err)
	}
	return out, nil
}

func (s *localStore) close() error {
	return s.db.Close()
}
