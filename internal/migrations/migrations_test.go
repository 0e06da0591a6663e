package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestEmbeddedFilesPerDialect(t *testing.T) {
	for _, dir := range []string{"sqlite", "postgres"} {
		files, err := fs.Glob(Migrations, dir+"/*.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, files, dir)
	}
}

func TestUp_SQLiteCreatesKVStore(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, Up(ctx, db, SQLite, logging.Discard()))
	assert.True(t, tableExists(t, db, "kv_store"))
	assert.True(t, tableExists(t, db, "goose_db_version"))

	// second run is a no-op
	require.NoError(t, Up(ctx, db, SQLite, logging.Discard()))
}

func TestUp_UnknownDialect(t *testing.T) {
	db := openSQLite(t)
	err := Up(context.Background(), db, Dialect("mysql"), logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestUp_PassesDialectDirToGoose(t *testing.T) {
	db := openSQLite(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Up(context.Background(), db, Postgres, logging.Discard()))
	assert.Equal(t, "postgres", gotDir)
}

func TestUp_WrapsGooseError(t *testing.T) {
	db := openSQLite(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	boom := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}

	err := Up(context.Background(), db, SQLite, logging.Discard())
	require.ErrorIs(t, err, boom)
}
