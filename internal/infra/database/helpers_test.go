package database

import (
	"database/sql"
	_ "embed"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/schema_sqlite.sql
var sqliteSchema string

// openTestDB opens a file-backed SQLite store with the worker's tables.
// The repositories' SQL is dialect-neutral, so SQLite exercises the same statements.
func openTestDB(t *testing.T) (*sql.DB, Dialect) {
	t.Helper()

	db, err := sql.Open(DriverSQLite, filepath.Join(t.TempDir(), "ops.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(sqliteSchema)
	require.NoError(t, err)

	dialect, err := NewDialect(DriverSQLite)
	require.NoError(t, err)
	return db, dialect
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	_, err := db.Exec(query, args...)
	require.NoError(t, err)
}

func ts(t time.Time) string { return t.Format(TimestampLayout) }
