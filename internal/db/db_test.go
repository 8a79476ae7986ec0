package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lexicon/internal/db"
)

func TestOpen_CreatesSchema(t *testing.T) {
	conn, err := db.Open(filepath.Join(t.TempDir(), "lexicon.db"))
	require.NoError(t, err)
	defer conn.Close()

	for _, table := range []string{"translations", "tags", "translation_tags"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s must exist", table)
	}
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.db")

	conn, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// Reopening an existing database reruns every migration safely.
	conn, err = db.Open(path)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}

func TestOpen_UniqueKeyLocaleEnforced(t *testing.T) {
	conn, err := db.Open(filepath.Join(t.TempDir(), "lexicon.db"))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(`INSERT INTO translations (id, key, locale, value, created_at, updated_at) VALUES (1, 'k', 'en', 'v', '', '')`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO translations (id, key, locale, value, created_at, updated_at) VALUES (2, 'k', 'en', 'v2', '', '')`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "UNIQUE constraint failed")
}
