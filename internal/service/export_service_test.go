package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"lexicon/internal/cache"
	"lexicon/internal/repository/mock"
	"lexicon/internal/service"
)

// baseOnlyStore hides the ListKeys capability of the wrapped store, forcing
// the degraded invalidation path.
type baseOnlyStore struct {
	inner *cache.Memory
}

func (s *baseOnlyStore) Get(ctx context.Context, key string) (string, bool) {
	return s.inner.Get(ctx, key)
}

func (s *baseOnlyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.inner.Set(ctx, key, value, ttl)
}

func (s *baseOnlyStore) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, keys...)
}

func TestExportService_MissThenHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	translations := mock.NewMockTranslationRepository(ctrl)
	tags := mock.NewMockTagRepository(ctrl)
	store := cache.NewMemory()
	svc := service.NewExportService(translations, tags, store, time.Minute)
	ctx := context.Background()

	translations.EXPECT().
		ExportByLocale(ctx, "en", nil).
		Return(map[string]string{"welcome.msg": "Hi"}, nil).
		Times(1)

	first, err := svc.Export(ctx, "en", nil)
	require.NoError(t, err)
	require.Equal(t, "en", first.Locale)
	require.Equal(t, map[string]string{"welcome.msg": "Hi"}, first.Messages)
	require.Equal(t, 1, first.Count)
	require.False(t, first.GeneratedAt.IsZero())

	// Second read is served from cache; the single EXPECT above would fail
	// the test if the database were queried again.
	second, err := svc.Export(ctx, "en", nil)
	require.NoError(t, err)
	require.Equal(t, first.Messages, second.Messages)
}

func TestExportService_TagOrderSharesOneCacheEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	translations := mock.NewMockTranslationRepository(ctrl)
	tags := mock.NewMockTagRepository(ctrl)
	store := cache.NewMemory()
	svc := service.NewExportService(translations, tags, store, time.Minute)
	ctx := context.Background()

	translations.EXPECT().
		ExportByLocale(ctx, "en", []string{"email", "web"}).
		Return(map[string]string{"a": "1"}, nil).
		Times(1)

	_, err := svc.Export(ctx, "en", []string{"web", "email"})
	require.NoError(t, err)
	_, err = svc.Export(ctx, "en", []string{"email", "web", "email"})
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
}

func TestExportService_CorruptEntryRecomputed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	translations := mock.NewMockTranslationRepository(ctrl)
	tags := mock.NewMockTagRepository(ctrl)
	store := cache.NewMemory()
	svc := service.NewExportService(translations, tags, store, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, cache.ExportKey("en", nil), "{not json", time.Minute))

	translations.EXPECT().
		ExportByLocale(ctx, "en", nil).
		Return(map[string]string{"a": "1"}, nil)

	export, err := svc.Export(ctx, "en", nil)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "1"}, export.Messages)
}

func TestExportService_InvalidateLocale_Enumerating(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	translations := mock.NewMockTranslationRepository(ctrl)
	tags := mock.NewMockTagRepository(ctrl)
	store := cache.NewMemory()
	svc := service.NewExportService(translations, tags, store, time.Minute)
	ctx := context.Background()

	seed := map[string]string{
		cache.ExportKey("en", nil):                      "base",
		cache.ExportKey("en", []string{"web"}):          "tagged",
		cache.ExportKey("en", []string{"web", "email"}): "tagged",
		cache.ExportKey("en-US", []string{"web"}):       "other locale",
		cache.ExportKey("de", nil):                      "other locale",
		cache.LocalesKey:                                "aux",
		cache.TagsKey:                                   "aux",
	}
	for key, value := range seed {
		require.NoError(t, store.Set(ctx, key, value, time.Minute))
	}

	require.NoError(t, svc.InvalidateLocale(ctx, "en"))

	for _, gone := range []string{
		cache.ExportKey("en", nil),
		cache.ExportKey("en", []string{"web"}),
		cache.ExportKey("en", []string{"web", "email"}),
		cache.LocalesKey,
		cache.TagsKey,
	} {
		_, ok := store.Get(ctx, gone)
		require.False(t, ok, "expected %s to be evicted", gone)
	}
	for _, kept := range []string{
		cache.ExportKey("en-US", []string{"web"}),
		cache.ExportKey("de", nil),
	} {
		_, ok := store.Get(ctx, kept)
		require.True(t, ok, "expected %s to survive", kept)
	}
}

func TestExportService_InvalidateLocale_Degraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	translations := mock.NewMockTranslationRepository(ctrl)
	tags := mock.NewMockTagRepository(ctrl)
	inner := cache.NewMemory()
	store := &baseOnlyStore{inner: inner}
	svc := service.NewExportService(translations, tags, store, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, cache.ExportKey("en", nil), "base", time.Minute))
	require.NoError(t, store.Set(ctx, cache.ExportKey("en", []string{"web"}), "tagged", time.Minute))
	require.NoError(t, store.Set(ctx, cache.LocalesKey, "aux", time.Minute))

	require.NoError(t, svc.InvalidateLocale(ctx, "en"))

	_, ok := store.Get(ctx, cache.ExportKey("en", nil))
	require.False(t, ok)
	_, ok = store.Get(ctx, cache.LocalesKey)
	require.False(t, ok)

	// Accepted staleness bound: tag-filtered entries survive until TTL.
	_, ok = store.Get(ctx, cache.ExportKey("en", []string{"web"}))
	require.True(t, ok)
}

func TestExportService_CachedLists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	translations := mock.NewMockTranslationRepository(ctrl)
	tags := mock.NewMockTagRepository(ctrl)
	store := cache.NewMemory()
	svc := service.NewExportService(translations, tags, store, time.Minute)
	ctx := context.Background()

	translations.EXPECT().ListLocales(ctx).Return([]string{"de", "en"}, nil).Times(1)
	tags.EXPECT().ListNames(ctx).Return([]string{"email", "web"}, nil).Times(1)

	for i := 0; i < 2; i++ {
		locales, err := svc.Locales(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"de", "en"}, locales)

		names, err := svc.TagNames(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"email", "web"}, names)
	}
}
