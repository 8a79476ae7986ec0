package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"lexicon/internal/cache"
	"lexicon/internal/logger"
	"lexicon/internal/model"
	"lexicon/internal/repository"
)

type CreateTranslationInput struct {
	Key    string
	Value  string
	Locale string
	Tags   []string
}

// UpdateTranslationInput carries partial updates. Nil fields are left
// untouched; a nil Tags keeps the existing association set, an empty
// non-nil Tags clears it.
type UpdateTranslationInput struct {
	Key    *string
	Value  *string
	Locale *string
	Tags   *[]string
}

type ListParams struct {
	Key     string
	Value   string
	Locale  string
	Tags    []string
	Page    int
	PerPage int
}

type TranslationPage struct {
	Items   []model.Translation
	Total   int
	Page    int
	PerPage int
}

type TranslationService interface {
	Create(ctx context.Context, input CreateTranslationInput) (model.Translation, error)
	Get(ctx context.Context, id int64) (model.Translation, error)
	List(ctx context.Context, params ListParams) (TranslationPage, error)
	Update(ctx context.Context, id int64, input UpdateTranslationInput) (model.Translation, error)
	Delete(ctx context.Context, id int64) error
}

type translationService struct {
	db           *sql.DB
	translations repository.TranslationRepository
	tagRepo      repository.TagRepository
	exports      ExportService
}

func NewTranslationService(db *sql.DB, translations repository.TranslationRepository, tagRepo repository.TagRepository, exports ExportService) TranslationService {
	return &translationService{
		db:           db,
		translations: translations,
		tagRepo:      tagRepo,
		exports:      exports,
	}
}

// localePattern accepts short language codes with optional region/script
// subtags: en, en-US, zh_Hant, pt-BR.
var localePattern = regexp.MustCompile(`^[A-Za-z]{2,3}([-_][A-Za-z0-9]{1,8})*$`)

// tagNamePattern excludes the cache-key delimiters "," and ":" so a tag
// name can never make two different tag sets derive the same key.
var tagNamePattern = regexp.MustCompile(`^[^,:\s]+$`)

func (s *translationService) Create(ctx context.Context, input CreateTranslationInput) (model.Translation, error) {
	key := strings.TrimSpace(input.Key)
	value := input.Value
	locale := strings.TrimSpace(input.Locale)
	if key == "" || value == "" || !localePattern.MatchString(locale) {
		return model.Translation{}, ErrInvalid
	}
	tagNames, ok := normalizeTagNames(input.Tags)
	if !ok {
		return model.Translation{}, ErrInvalid
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Translation{}, fmt.Errorf("%w: begin create: %v", ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	translations := repository.NewTranslationRepository(tx)
	tags := repository.NewTagRepository(tx)

	if existing, err := translations.FindByKeyLocale(ctx, key, locale); err != nil {
		return model.Translation{}, fmt.Errorf("check key and locale: %w", err)
	} else if existing != nil {
		return model.Translation{}, &TranslationConflictError{Existing: *existing}
	}

	created, err := translations.Create(ctx, model.Translation{Key: key, Value: value, Locale: locale})
	if err != nil {
		// A concurrent create for the same pair races at the unique
		// constraint; the loser surfaces as a conflict.
		if repository.IsUniqueViolation(err) {
			return model.Translation{}, ErrConflict
		}
		return model.Translation{}, err
	}

	if err := syncTags(ctx, tags, created.ID, tagNames); err != nil {
		return model.Translation{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Translation{}, fmt.Errorf("%w: commit create: %v", ErrStoreUnavailable, err)
	}

	s.invalidate(ctx, created.Locale)

	created.Tags = tagNames
	return created, nil
}

func (s *translationService) Get(ctx context.Context, id int64) (model.Translation, error) {
	tr, err := s.translations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Translation{}, ErrNotFound
		}
		return model.Translation{}, fmt.Errorf("get translation: %w", err)
	}
	names, err := s.tagRepo.ListForTranslation(ctx, id)
	if err != nil {
		return model.Translation{}, err
	}
	tr.Tags = names
	return tr, nil
}

func (s *translationService) List(ctx context.Context, params ListParams) (TranslationPage, error) {
	filter := repository.ListFilter{
		Key:     strings.TrimSpace(params.Key),
		Value:   strings.TrimSpace(params.Value),
		Locale:  strings.TrimSpace(params.Locale),
		Tags:    cache.NormalizeTags(params.Tags),
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	items, err := s.translations.List(ctx, filter)
	if err != nil {
		return TranslationPage{}, err
	}
	total, err := s.translations.Count(ctx, filter)
	if err != nil {
		return TranslationPage{}, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	tagsByID, err := s.tagRepo.ListForTranslations(ctx, ids)
	if err != nil {
		return TranslationPage{}, err
	}
	for i := range items {
		items[i].Tags = tagsByID[items[i].ID]
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	return TranslationPage{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: filter.Limit(),
	}, nil
}

func (s *translationService) Update(ctx context.Context, id int64, input UpdateTranslationInput) (model.Translation, error) {
	var tagNames []string
	if input.Tags != nil {
		normalized, ok := normalizeTagNames(*input.Tags)
		if !ok {
			return model.Translation{}, ErrInvalid
		}
		tagNames = normalized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Translation{}, fmt.Errorf("%w: begin update: %v", ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	translations := repository.NewTranslationRepository(tx)
	tags := repository.NewTagRepository(tx)

	current, err := translations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Translation{}, ErrNotFound
		}
		return model.Translation{}, fmt.Errorf("get translation: %w", err)
	}
	previousLocale := current.Locale

	if input.Key != nil {
		current.Key = strings.TrimSpace(*input.Key)
	}
	if input.Value != nil {
		current.Value = *input.Value
	}
	if input.Locale != nil {
		current.Locale = strings.TrimSpace(*input.Locale)
	}
	if current.Key == "" || current.Value == "" || !localePattern.MatchString(current.Locale) {
		return model.Translation{}, ErrInvalid
	}

	// The post-update pair must not collide with a different live record.
	if existing, err := translations.FindByKeyLocale(ctx, current.Key, current.Locale); err != nil {
		return model.Translation{}, fmt.Errorf("check key and locale: %w", err)
	} else if existing != nil && existing.ID != id {
		return model.Translation{}, &TranslationConflictError{Existing: *existing}
	}

	updated, err := translations.Update(ctx, current)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return model.Translation{}, ErrConflict
		}
		return model.Translation{}, err
	}

	if input.Tags != nil {
		if err := syncTags(ctx, tags, id, tagNames); err != nil {
			return model.Translation{}, err
		}
	} else {
		names, err := tags.ListForTranslation(ctx, id)
		if err != nil {
			return model.Translation{}, err
		}
		tagNames = names
	}

	if err := tx.Commit(); err != nil {
		return model.Translation{}, fmt.Errorf("%w: commit update: %v", ErrStoreUnavailable, err)
	}

	s.invalidate(ctx, updated.Locale)
	if previousLocale != updated.Locale {
		s.invalidate(ctx, previousLocale)
	}

	updated.Tags = tagNames
	return updated, nil
}

func (s *translationService) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin delete: %v", ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	translations := repository.NewTranslationRepository(tx)

	current, err := translations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get translation: %w", err)
	}

	// Association rows go with the record via ON DELETE CASCADE.
	if err := translations.Delete(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit delete: %v", ErrStoreUnavailable, err)
	}

	s.invalidate(ctx, current.Locale)
	return nil
}

// invalidate runs strictly post-commit. A failure here leaves the cache
// stale until TTL expiry but must not turn a committed write into a
// reported error.
func (s *translationService) invalidate(ctx context.Context, locale string) {
	if err := s.exports.InvalidateLocale(ctx, locale); err != nil {
		logger.Error("cache invalidation failed after commit",
			"module", "translation", "locale", locale, "error", err)
	}
}

// syncTags find-or-creates each tag by name and replaces the association
// set. Runs inside the caller's transaction.
func syncTags(ctx context.Context, tags repository.TagRepository, translationID int64, names []string) error {
	tagIDs := make([]int64, 0, len(names))
	for _, name := range names {
		tag, err := tags.FindOrCreate(ctx, name)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	return tags.Sync(ctx, translationID, tagIDs)
}

// normalizeTagNames trims, drops empties, deduplicates and sorts. Returns
// false if any surviving name contains a cache-key delimiter.
func normalizeTagNames(names []string) ([]string, bool) {
	trimmed := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !tagNamePattern.MatchString(name) {
			return nil, false
		}
		trimmed = append(trimmed, name)
	}
	return cache.NormalizeTags(trimmed), true
}
