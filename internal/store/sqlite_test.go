package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// schemaObjects returns the names and definitions of all tables and indexes.
func schemaObjects(t *testing.T, db *sql.DB) map[string]string {
	t.Helper()
	rows, err := db.Query(`
		SELECT name, COALESCE(sql, '') FROM sqlite_master
		WHERE type IN ('table', 'index') AND name NOT LIKE 'sqlite_%'
	`)
	require.NoError(t, err)
	defer rows.Close()

	objects := make(map[string]string)
	for rows.Next() {
		var name, ddl string
		require.NoError(t, rows.Scan(&name, &ddl))
		objects[name] = ddl
	}
	require.NoError(t, rows.Err())
	return objects
}

func TestStore_Open_FreshDatabase(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, schemaVersion, version)

	objects := schemaObjects(t, store.db)
	assert.Contains(t, objects, "todos")
	assert.Contains(t, objects, "idx_todos_created")
	assert.Contains(t, objects, "media")
	assert.Contains(t, objects, "idx_media_created")
	assert.Contains(t, objects, "tags")
}

func TestStore_Migrate_StepwiseMatchesFresh(t *testing.T) {
	// Database upgraded 0 -> 1 -> 2 must end up structurally identical to
	// one created fresh at version 2.
	tmpDir := t.TempDir()
	upgradedPath := filepath.Join(tmpDir, "upgraded.db")
	freshPath := filepath.Join(tmpDir, "fresh.db")

	// Build a version 1 database by hand
	db, err := sql.Open("sqlite", upgradedPath)
	require.NoError(t, err)
	_, err = db.Exec(migrations[0])
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Opening it runs the 1 -> 2 migration
	upgraded, err := NewSQLiteStore(upgradedPath)
	require.NoError(t, err)
	defer upgraded.Close()

	fresh, err := NewSQLiteStore(freshPath)
	require.NoError(t, err)
	defer fresh.Close()

	assert.Equal(t, schemaObjects(t, fresh.db), schemaObjects(t, upgraded.db))

	var version int
	require.NoError(t, upgraded.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, schemaVersion, version)
}

func TestStore_Migrate_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening an up-to-date database must be a no-op
	store, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	store.Close()
}

func TestStore_Open_SchemaTooNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "future.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewSQLiteStore(dbPath)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}
