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

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// ListFilter selects translations for the listing endpoint. Every predicate
// is optional; the zero value matches all records. Key and Value are
// case-insensitive unanchored substrings, Locale is an exact match, and Tags
// requires the record to carry at least one of the named tags.
type ListFilter struct {
	Key     string
	Value   string
	Locale  string
	Tags    []string
	Page    int
	PerPage int
}

// Limit returns the page size clamped to [1, MaxPerPage]. Out-of-window
// requests are clamped silently, never rejected.
func (f ListFilter) Limit() int {
	if f.PerPage <= 0 {
		return DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		return MaxPerPage
	}
	return f.PerPage
}

// Offset returns the row offset for the (clamped) page number.
func (f ListFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit()
}

type TranslationRepository interface {
	Create(ctx context.Context, tr model.Translation) (model.Translation, error)
	GetByID(ctx context.Context, id int64) (model.Translation, error)
	FindByKeyLocale(ctx context.Context, key, locale string) (*model.Translation, error)
	List(ctx context.Context, filter ListFilter) ([]model.Translation, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	Update(ctx context.Context, tr model.Translation) (model.Translation, error)
	Delete(ctx context.Context, id int64) error
	ExportByLocale(ctx context.Context, locale string, tagNames []string) (map[string]string, error)
	ListLocales(ctx context.Context) ([]string, error)
}

type translationRepository struct {
	db dbtx
}

func NewTranslationRepository(db dbtx) TranslationRepository {
	return &translationRepository{db: db}
}

func (r *translationRepository) Create(ctx context.Context, tr model.Translation) (model.Translation, error) {
	tr.ID = snowflake.NextID()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO translations (id, key, locale, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		tr.ID,
		tr.Key,
		tr.Locale,
		tr.Value,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return model.Translation{}, fmt.Errorf("create translation: %w", err)
	}
	tr.CreatedAt = now
	tr.UpdatedAt = now
	return tr, nil
}

func (r *translationRepository) GetByID(ctx context.Context, id int64) (model.Translation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, key, locale, value, created_at, updated_at FROM translations WHERE id = ?`, id)
	return scanTranslation(row)
}

func (r *translationRepository) FindByKeyLocale(ctx context.Context, key, locale string) (*model.Translation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, key, locale, value, created_at, updated_at FROM translations WHERE key = ? AND locale = ?`, key, locale)
	tr, err := scanTranslation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find translation: %w", err)
	}
	return &tr, nil
}

func (r *translationRepository) List(ctx context.Context, filter ListFilter) ([]model.Translation, error) {
	where, args := buildListWhere(filter)
	query := `SELECT t.id, t.key, t.locale, t.value, t.created_at, t.updated_at FROM translations t` +
		where +
		` ORDER BY t.key, t.id LIMIT ? OFFSET ?`
	args = append(args, filter.Limit(), filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer rows.Close()

	var translations []model.Translation
	for rows.Next() {
		tr, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		translations = append(translations, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}

	return translations, nil
}

func (r *translationRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := buildListWhere(filter)
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations t`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count translations: %w", err)
	}
	return count, nil
}

func (r *translationRepository) Update(ctx context.Context, tr model.Translation) (model.Translation, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE translations SET key = ?, locale = ?, value = ?, updated_at = ? WHERE id = ?`,
		tr.Key,
		tr.Locale,
		tr.Value,
		formatTime(now),
		tr.ID,
	)
	if err != nil {
		return model.Translation{}, fmt.Errorf("update translation: %w", err)
	}
	tr.UpdatedAt = now
	return tr, nil
}

func (r *translationRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM translations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete translation: %w", err)
	}
	return nil
}

func (r *translationRepository) ExportByLocale(ctx context.Context, locale string, tagNames []string) (map[string]string, error) {
	query := `SELECT t.key, t.value FROM translations t WHERE t.locale = ?`
	args := []interface{}{locale}
	if len(tagNames) > 0 {
		query += tagMembershipClause(tagNames, &args)
	}
	query += ` ORDER BY t.key, t.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("export translations: %w", err)
	}
	defer rows.Close()

	messages := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		messages[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export rows: %w", err)
	}

	return messages, nil
}

func (r *translationRepository) ListLocales(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT locale FROM translations ORDER BY locale`)
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	defer rows.Close()

	var locales []string
	for rows.Next() {
		var locale string
		if err := rows.Scan(&locale); err != nil {
			return nil, fmt.Errorf("scan locale: %w", err)
		}
		locales = append(locales, locale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locales: %w", err)
	}

	return locales, nil
}

// buildListWhere composes the WHERE clause shared by List and Count so the
// page contents and the total always agree on the same predicate.
func buildListWhere(filter ListFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Key != "" {
		conditions = append(conditions, `t.key LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(filter.Key)+"%")
	}
	if filter.Value != "" {
		conditions = append(conditions, `t.value LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(filter.Value)+"%")
	}
	if filter.Locale != "" {
		conditions = append(conditions, `t.locale = ?`)
		args = append(args, filter.Locale)
	}
	if len(filter.Tags) > 0 {
		conditions = append(conditions, strings.TrimPrefix(tagMembershipClause(filter.Tags, &args), " AND "))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// tagMembershipClause matches translations carrying at least one of the
// named tags (OR across the set, AND with surrounding predicates).
func tagMembershipClause(tagNames []string, args *[]interface{}) string {
	placeholders := strings.Repeat("?,", len(tagNames)-1) + "?"
	for _, name := range tagNames {
		*args = append(*args, name)
	}
	return ` AND EXISTS (
		SELECT 1 FROM translation_tags tt
		INNER JOIN tags tg ON tg.id = tt.tag_id
		WHERE tt.translation_id = t.id AND tg.name IN (` + placeholders + `))`
}

func scanTranslation(scanner interface {
	Scan(dest ...interface{}) error
}) (model.Translation, error) {
	var tr model.Translation
	var createdAt string
	var updatedAt string
	if err := scanner.Scan(
		&tr.ID,
		&tr.Key,
		&tr.Locale,
		&tr.Value,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Translation{}, err
	}
	var err error
	tr.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Translation{}, fmt.Errorf("parse translation created_at: %w", err)
	}
	tr.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Translation{}, fmt.Errorf("parse translation updated_at: %w", err)
	}
	return tr, nil
}
