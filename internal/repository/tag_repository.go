package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lexicon/internal/model"
	"lexicon/internal/snowflake"
)

type TagRepository interface {
	// FindOrCreate upserts a tag by its unique name. The insert is guarded
	// by the name's unique constraint, so two concurrent callers converge
	// on the same row.
	FindOrCreate(ctx context.Context, name string) (model.Tag, error)
	FindByName(ctx context.Context, name string) (*model.Tag, error)
	ListNames(ctx context.Context) ([]string, error)
	// Sync replaces the full tag association set of a translation with the
	// given tag IDs. Replace-all, not merge.
	Sync(ctx context.Context, translationID int64, tagIDs []int64) error
	ListForTranslation(ctx context.Context, translationID int64) ([]string, error)
	ListForTranslations(ctx context.Context, translationIDs []int64) (map[int64][]string, error)
}

type tagRepository struct {
	db dbtx
}

func NewTagRepository(db dbtx) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindOrCreate(ctx context.Context, name string) (model.Tag, error) {
	if existing, err := r.FindByName(ctx, name); err != nil {
		return model.Tag{}, err
	} else if existing != nil {
		return *existing, nil
	}

	id := snowflake.NextID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`,
		id,
		name,
		formatTime(now),
	)
	if err != nil {
		return model.Tag{}, fmt.Errorf("create tag: %w", err)
	}

	// Re-read: a concurrent insert may have won the conflict.
	created, err := r.FindByName(ctx, name)
	if err != nil {
		return model.Tag{}, err
	}
	if created == nil {
		return model.Tag{}, fmt.Errorf("create tag: %q missing after upsert", name)
	}
	return *created, nil
}

func (r *tagRepository) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM tags WHERE name = ?`, name)

	var tag model.Tag
	var createdAt string
	if err := row.Scan(&tag.ID, &tag.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find tag: %w", err)
	}
	var err error
	tag.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse tag created_at: %w", err)
	}
	return &tag, nil
}

func (r *tagRepository) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	return names, nil
}

func (r *tagRepository) Sync(ctx context.Context, translationID int64, tagIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM translation_tags WHERE translation_id = ?`, translationID); err != nil {
		return fmt.Errorf("clear tag associations: %w", err)
	}
	for _, tagID := range tagIDs {
		_, err := r.db.ExecContext(
			ctx,
			`INSERT INTO translation_tags (translation_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			translationID,
			tagID,
		)
		if err != nil {
			return fmt.Errorf("associate tag: %w", err)
		}
	}
	return nil
}

func (r *tagRepository) ListForTranslation(ctx context.Context, translationID int64) ([]string, error) {
	byID, err := r.ListForTranslations(ctx, []int64{translationID})
	if err != nil {
		return nil, err
	}
	return byID[translationID], nil
}

func (r *tagRepository) ListForTranslations(ctx context.Context, translationIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string)
	if len(translationIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(translationIDs)-1) + "?"
	args := make([]interface{}, len(translationIDs))
	for i, id := range translationIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT tt.translation_id, tg.name
		 FROM translation_tags tt
		 INNER JOIN tags tg ON tg.id = tt.tag_id
		 WHERE tt.translation_id IN (`+placeholders+`)
		 ORDER BY tg.name`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list tag associations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var translationID int64
		var name string
		if err := rows.Scan(&translationID, &name); err != nil {
			return nil, fmt.Errorf("scan tag association: %w", err)
		}
		result[translationID] = append(result[translationID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag associations: %w", err)
	}

	return result, nil
}
