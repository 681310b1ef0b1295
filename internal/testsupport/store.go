package testsupport

import (
	"database/sql"
	"testing"

	"marginalia/internal/storedb"
)

// CatalogRow seeds one asset row in a catalog store fixture. Empty string
// fields are stored as NULL.
type CatalogRow struct {
	AssetID  string
	Title    string
	Author   string
	Path     string
	CoverURL string
}

// SeedCatalog creates a catalog store file with the given rows, building the
// schema the catalog reader queries.
func SeedCatalog(t testing.TB, path string, rows []CatalogRow) {
	t.Helper()

	db := mustOpenFixture(t, path)
	defer db.Close()

	const schema = `CREATE TABLE IF NOT EXISTS ZBKLIBRARYASSET (
		Z_PK INTEGER PRIMARY KEY AUTOINCREMENT,
		ZASSETID TEXT,
		ZTITLE TEXT,
		ZAUTHOR TEXT,
		ZPATH TEXT,
		ZCOVERURL TEXT
	)`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create catalog schema: %v", err)
	}

	for _, row := range rows {
		_, err := db.Exec(
			"INSERT INTO ZBKLIBRARYASSET (ZASSETID, ZTITLE, ZAUTHOR, ZPATH, ZCOVERURL) VALUES (?, ?, ?, ?, ?)",
			nullString(row.AssetID), nullString(row.Title), nullString(row.Author),
			nullString(row.Path), nullString(row.CoverURL),
		)
		if err != nil {
			t.Fatalf("insert catalog row: %v", err)
		}
	}
}

// AnnotationRow seeds one highlight row in an annotation store fixture.
// Timestamps are raw Apple-epoch seconds; zero stores NULL.
type AnnotationRow struct {
	AssetID  string
	Quote    string
	Note     string
	Chapter  string
	Style    int
	Modified float64
	Created  float64
	Deleted  bool
}

// SeedAnnotations creates an annotation store file with the given rows.
func SeedAnnotations(t testing.TB, path string, rows []AnnotationRow) {
	t.Helper()

	db := mustOpenFixture(t, path)
	defer db.Close()

	const schema = `CREATE TABLE IF NOT EXISTS ZAEANNOTATION (
		Z_PK INTEGER PRIMARY KEY AUTOINCREMENT,
		ZANNOTATIONASSETID TEXT,
		ZANNOTATIONSELECTEDTEXT TEXT,
		ZANNOTATIONNOTE TEXT,
		ZFUTUREPROOFING5 TEXT,
		ZANNOTATIONSTYLE INTEGER,
		ZANNOTATIONDELETED INTEGER NOT NULL DEFAULT 0,
		ZANNOTATIONMODIFICATIONDATE REAL,
		ZANNOTATIONCREATIONDATE REAL
	)`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create annotation schema: %v", err)
	}

	for _, row := range rows {
		deleted := 0
		if row.Deleted {
			deleted = 1
		}
		_, err := db.Exec(
			`INSERT INTO ZAEANNOTATION (
				ZANNOTATIONASSETID, ZANNOTATIONSELECTEDTEXT, ZANNOTATIONNOTE,
				ZFUTUREPROOFING5, ZANNOTATIONSTYLE, ZANNOTATIONDELETED,
				ZANNOTATIONMODIFICATIONDATE, ZANNOTATIONCREATIONDATE
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			nullString(row.AssetID), nullString(row.Quote), nullString(row.Note),
			nullString(row.Chapter), row.Style, deleted,
			nullFloat(row.Modified), nullFloat(row.Created),
		)
		if err != nil {
			t.Fatalf("insert annotation row: %v", err)
		}
	}
}

// SyncRow seeds one payload row in a sync store fixture. A nil payload is
// stored as NULL.
type SyncRow struct {
	AssetID string
	Payload []byte
	Deleted bool
}

// SeedSyncStore creates a sync store file with the given rows.
func SeedSyncStore(t testing.TB, path string, rows []SyncRow) {
	t.Helper()

	db := mustOpenFixture(t, path)
	defer db.Close()

	const schema = `CREATE TABLE IF NOT EXISTS ZSYNCEDANNOTATION (
		Z_PK INTEGER PRIMARY KEY AUTOINCREMENT,
		ZASSETID TEXT,
		ZPAYLOAD BLOB,
		ZDELETED INTEGER NOT NULL DEFAULT 0
	)`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create sync schema: %v", err)
	}

	for _, row := range rows {
		deleted := 0
		if row.Deleted {
			deleted = 1
		}
		var payload any
		if row.Payload != nil {
			payload = row.Payload
		}
		_, err := db.Exec(
			"INSERT INTO ZSYNCEDANNOTATION (ZASSETID, ZPAYLOAD, ZDELETED) VALUES (?, ?, ?)",
			nullString(row.AssetID), payload, deleted,
		)
		if err != nil {
			t.Fatalf("insert sync row: %v", err)
		}
	}
}

func mustOpenFixture(t testing.TB, path string) *sql.DB {
	t.Helper()
	db, err := storedb.OpenWritable(path)
	if err != nil {
		t.Fatalf("open fixture store %s: %v", path, err)
	}
	return db
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullFloat(value float64) any {
	if value == 0 {
		return nil
	}
	return value
}
