package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"lexicon/internal/cache"
	"lexicon/internal/logger"
	"lexicon/internal/model"
	"lexicon/internal/repository"
)

// ExportService serves the denormalized per-locale export through a
// read-through cache, and owns invalidation of affected cache entries after
// every mutation.
type ExportService interface {
	Export(ctx context.Context, locale string, tagNames []string) (model.Export, error)
	Locales(ctx context.Context) ([]string, error)
	TagNames(ctx context.Context) ([]string, error)

	// InvalidateLocale evicts every export entry derived from the locale,
	// plus the cached locale and tag lists. On a store without key
	// enumeration only the untagged base entry is evicted; tag-filtered
	// entries may then serve stale data until their TTL expires.
	InvalidateLocale(ctx context.Context, locale string) error
}

type exportService struct {
	translations repository.TranslationRepository
	tags         repository.TagRepository
	store        cache.Store
	ttl          time.Duration
	group        singleflight.Group
}

func NewExportService(translations repository.TranslationRepository, tags repository.TagRepository, store cache.Store, ttl time.Duration) ExportService {
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	return &exportService{
		translations: translations,
		tags:         tags,
		store:        store,
		ttl:          ttl,
	}
}

func (s *exportService) Export(ctx context.Context, locale string, tagNames []string) (model.Export, error) {
	normalized := cache.NormalizeTags(tagNames)
	key := cache.ExportKey(locale, normalized)

	if raw, ok := s.store.Get(ctx, key); ok {
		var export model.Export
		if err := json.Unmarshal([]byte(raw), &export); err == nil {
			return export, nil
		}
		// Undecodable entry is treated as a miss and overwritten below.
		logger.Warn("discarding corrupt export cache entry", "module", "export", "key", key)
	}

	// Concurrent misses for the same key share one database query.
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.build(ctx, locale, normalized, key)
	})
	if err != nil {
		return model.Export{}, err
	}
	return result.(model.Export), nil
}

func (s *exportService) build(ctx context.Context, locale string, tagNames []string, key string) (model.Export, error) {
	messages, err := s.translations.ExportByLocale(ctx, locale, tagNames)
	if err != nil {
		return model.Export{}, fmt.Errorf("%w: build export: %v", ErrStoreUnavailable, err)
	}

	export := model.Export{
		Locale:      locale,
		Messages:    messages,
		Count:       len(messages),
		GeneratedAt: time.Now().UTC(),
	}

	encoded, err := json.Marshal(export)
	if err != nil {
		return model.Export{}, fmt.Errorf("encode export: %w", err)
	}
	if err := s.store.Set(ctx, key, string(encoded), s.ttl); err != nil {
		// Cache write failure is not fatal; the export was computed live.
		logger.Warn("export cache write failed", "module", "export", "key", key, "error", err)
	}

	return export, nil
}

func (s *exportService) Locales(ctx context.Context) ([]string, error) {
	return s.cachedList(ctx, cache.LocalesKey, s.translations.ListLocales)
}

func (s *exportService) TagNames(ctx context.Context) ([]string, error) {
	return s.cachedList(ctx, cache.TagsKey, s.tags.ListNames)
}

func (s *exportService) cachedList(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	if raw, ok := s.store.Get(ctx, key); ok {
		var values []string
		if err := json.Unmarshal([]byte(raw), &values); err == nil {
			return values, nil
		}
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		values, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if values == nil {
			values = []string{}
		}
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("encode cached list: %w", err)
		}
		if err := s.store.Set(ctx, key, string(encoded), s.ttl); err != nil {
			logger.Warn("list cache write failed", "module", "export", "key", key, "error", err)
		}
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (s *exportService) InvalidateLocale(ctx context.Context, locale string) error {
	// Any mutation can introduce a new locale or tag name, so the cached
	// lists always go.
	keys := []string{cache.ExportKey(locale, nil), cache.LocalesKey, cache.TagsKey}

	if lister, ok := s.store.(cache.KeyLister); ok {
		tagged, err := lister.ListKeys(ctx, cache.ExportTagPrefix(locale))
		if err != nil {
			logger.Warn("cache key enumeration failed, falling back to base-key eviction",
				"module", "export", "locale", locale, "error", err)
		} else {
			keys = append(keys, tagged...)
		}
	} else {
		logger.Debug("cache store cannot enumerate keys, tag-filtered exports age out via TTL",
			"module", "export", "locale", locale)
	}

	if err := s.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate locale %q: %w", locale, err)
	}
	return nil
}
