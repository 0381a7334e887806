// Package testutil provides a throwaway database for package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/local-services-api/internal/database"
)

// OpenDB returns a migrated sqlite database in t's temp dir.  A single
// connection keeps sqlite's writer lock out of the way; callers must not
// query through the *sql.DB while they hold a transaction.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, database.SQLite))
	return db
}
