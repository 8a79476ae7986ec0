// Package testutil provides a migrated throwaway database and row seeding
// helpers for repository and service tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lexicon/internal/db"
	"lexicon/internal/snowflake"
)

var snowflakeOnce sync.Once

// NewTestDB opens a fresh migrated sqlite database in a temp dir. The
// connection is closed when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	snowflakeOnce.Do(func() {
		if err := snowflake.Init(1); err != nil {
			t.Fatalf("init snowflake: %v", err)
		}
	})

	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SeedTranslation inserts a translation row directly and returns its ID.
func SeedTranslation(t *testing.T, conn *sql.DB, key, locale, value string) int64 {
	t.Helper()

	id := snowflake.NextID()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := conn.Exec(
		`INSERT INTO translations (id, key, locale, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, key, locale, value, now, now,
	)
	if err != nil {
		t.Fatalf("seed translation: %v", err)
	}
	return id
}

// SeedTag inserts a tag row directly and returns its ID.
func SeedTag(t *testing.T, conn *sql.DB, name string) int64 {
	t.Helper()

	id := snowflake.NextID()
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := conn.Exec(`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`, id, name, now); err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	return id
}

// SeedAssociation links a translation to a tag.
func SeedAssociation(t *testing.T, conn *sql.DB, translationID, tagID int64) {
	t.Helper()

	if _, err := conn.Exec(`INSERT INTO translation_tags (translation_id, tag_id) VALUES (?, ?)`, translationID, tagID); err != nil {
		t.Fatalf("seed association: %v", err)
	}
}

// CountTranslations returns the total number of translation rows.
func CountTranslations(t *testing.T, conn *sql.DB) int {
	t.Helper()

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM translations`).Scan(&count); err != nil {
		t.Fatalf("count translations: %v", err)
	}
	return count
}

// CountAssociations returns the number of association rows for a translation.
func CountAssociations(t *testing.T, conn *sql.DB, translationID int64) int {
	t.Helper()

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM translation_tags WHERE translation_id = ?`, translationID).Scan(&count); err != nil {
		t.Fatalf("count associations: %v", err)
	}
	return count
}
