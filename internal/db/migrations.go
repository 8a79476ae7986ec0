package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT)
const baseSchema = `
CREATE TABLE IF NOT EXISTS translations (
  id INTEGER PRIMARY KEY,
  key TEXT NOT NULL,
  locale TEXT NOT NULL,
  value TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE (key, locale)
);

CREATE INDEX IF NOT EXISTS idx_translations_locale ON translations(locale);

CREATE TABLE IF NOT EXISTS tags (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS translation_tags (
  translation_id INTEGER NOT NULL,
  tag_id INTEGER NOT NULL,
  PRIMARY KEY (translation_id, tag_id),
  FOREIGN KEY (translation_id) REFERENCES translations(id) ON DELETE CASCADE,
  FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: covering index for the per-locale export query
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_translations_locale_key ON translations(locale, key)`); err != nil {
		return fmt.Errorf("create idx_translations_locale_key: %w", err)
	}

	// Migration 2: reverse lookup for tag-filtered listings
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_translation_tags_tag_id ON translation_tags(tag_id)`); err != nil {
		return fmt.Errorf("create idx_translation_tags_tag_id: %w", err)
	}

	// Migration 3: updated_at used to be nullable in early deployments
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('translations') WHERE name = 'updated_at'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check updated_at column: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE translations ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("add updated_at column: %w", err)
		}
	}

	return nil
}
