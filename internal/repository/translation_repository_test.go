package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"lexicon/internal/model"
	"lexicon/internal/repository"
	"lexicon/internal/repository/testutil"
)

func TestTranslationRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Translation{Key: "welcome.msg", Locale: "en", Value: "Hi"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "welcome.msg", fetched.Key)
	require.Equal(t, "en", fetched.Locale)
	require.Equal(t, "Hi", fetched.Value)
}

func TestTranslationRepository_Create_DuplicateKeyLocale(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Translation{Key: "welcome.msg", Locale: "en", Value: "Hi"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, model.Translation{Key: "welcome.msg", Locale: "en", Value: "Hello"})
	require.Error(t, err)
	require.True(t, repository.IsUniqueViolation(err))

	// Same key in another locale is fine.
	_, err = repo.Create(ctx, model.Translation{Key: "welcome.msg", Locale: "de", Value: "Hallo"})
	require.NoError(t, err)
}

func TestTranslationRepository_FindByKeyLocale(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	testutil.SeedTranslation(t, db, "welcome.msg", "en", "Hi")

	found, err := repo.FindByKeyLocale(ctx, "welcome.msg", "en")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "Hi", found.Value)

	missing, err := repo.FindByKeyLocale(ctx, "welcome.msg", "fr")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestTranslationRepository_List_SubstringFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	testutil.SeedTranslation(t, db, "welcome.message", "en", "Hello there")
	testutil.SeedTranslation(t, db, "goodbye.message", "en", "Bye")
	testutil.SeedTranslation(t, db, "welcome.title", "de", "Hallo")

	// Case-insensitive, unanchored key substring.
	items, err := repo.List(ctx, repository.ListFilter{Key: "WELCOME"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Value substring combines with locale via AND.
	items, err = repo.List(ctx, repository.ListFilter{Value: "hello", Locale: "en"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "welcome.message", items[0].Key)

	// Empty filter matches everything.
	items, err = repo.List(ctx, repository.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)
}

func TestTranslationRepository_List_LikeWildcardsAreLiteral(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	testutil.SeedTranslation(t, db, "discount.100_percent", "en", "100%")
	testutil.SeedTranslation(t, db, "discount.total", "en", "total")

	items, err := repo.List(ctx, repository.ListFilter{Key: "100_p"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = repo.List(ctx, repository.ListFilter{Value: "%"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "discount.100_percent", items[0].Key)
}

func TestTranslationRepository_List_TagFilterMatchesAny(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	webOnly := testutil.SeedTranslation(t, db, "a.key", "en", "1")
	emailOnly := testutil.SeedTranslation(t, db, "b.key", "en", "2")
	testutil.SeedTranslation(t, db, "c.key", "en", "3")

	web := testutil.SeedTag(t, db, "web")
	email := testutil.SeedTag(t, db, "email")
	testutil.SeedAssociation(t, db, webOnly, web)
	testutil.SeedAssociation(t, db, emailOnly, email)

	items, err := repo.List(ctx, repository.ListFilter{Tags: []string{"web", "email"}})
	require.NoError(t, err)
	require.Len(t, items, 2, "at least one named tag must match")

	items, err = repo.List(ctx, repository.ListFilter{Tags: []string{"web"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "a.key", items[0].Key)

	items, err = repo.List(ctx, repository.ListFilter{Tags: []string{"unknown"}})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestTranslationRepository_List_PaginationClamped(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		testutil.SeedTranslation(t, db, fmt.Sprintf("key.%03d", i), "en", "v")
	}

	// Oversized page size is clamped to 100, never an error.
	items, err := repo.List(ctx, repository.ListFilter{PerPage: 500})
	require.NoError(t, err)
	require.Len(t, items, 100)

	// Default page size applies when unset.
	items, err = repo.List(ctx, repository.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, repository.DefaultPerPage)

	total, err := repo.Count(ctx, repository.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 120, total)
}

func TestTranslationRepository_List_StableOrderAcrossPages(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		testutil.SeedTranslation(t, db, fmt.Sprintf("key.%03d", i), "en", "v")
	}

	seen := make(map[int64]bool)
	for page := 1; page <= 3; page++ {
		items, err := repo.List(ctx, repository.ListFilter{Page: page, PerPage: 10})
		require.NoError(t, err)
		require.Len(t, items, 10)
		for _, item := range items {
			require.False(t, seen[item.ID], "no row may appear on two pages")
			seen[item.ID] = true
		}
	}
	require.Len(t, seen, 30)
}

func TestTranslationRepository_UpdateAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	id := testutil.SeedTranslation(t, db, "welcome.msg", "en", "Hi")

	updated, err := repo.Update(ctx, model.Translation{ID: id, Key: "welcome.msg", Locale: "en", Value: "Hello"})
	require.NoError(t, err)
	require.Equal(t, "Hello", updated.Value)

	fetched, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Hello", fetched.Value)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestTranslationRepository_ExportByLocale(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	a := testutil.SeedTranslation(t, db, "a.key", "en", "A")
	testutil.SeedTranslation(t, db, "b.key", "en", "B")
	testutil.SeedTranslation(t, db, "a.key", "de", "A-DE")

	web := testutil.SeedTag(t, db, "web")
	testutil.SeedAssociation(t, db, a, web)

	messages, err := repo.ExportByLocale(ctx, "en", nil)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a.key": "A", "b.key": "B"}, messages)

	messages, err = repo.ExportByLocale(ctx, "en", []string{"web"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a.key": "A"}, messages)

	messages, err = repo.ExportByLocale(ctx, "fr", nil)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestTranslationRepository_ListLocales(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTranslationRepository(db)
	ctx := context.Background()

	testutil.SeedTranslation(t, db, "a", "fr", "1")
	testutil.SeedTranslation(t, db, "a", "de", "2")
	testutil.SeedTranslation(t, db, "b", "de", "3")

	locales, err := repo.ListLocales(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"de", "fr"}, locales)
}
