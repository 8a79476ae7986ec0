package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	val, ok := store.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", val)
}

func TestMemory_Get_Missing(t *testing.T) {
	store := NewMemory()

	val, ok := store.Get(context.Background(), "absent")
	require.False(t, ok)
	require.Empty(t, val)
}

func TestMemory_TTLExpiry(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, ok := store.Get(ctx, "k")
	require.False(t, ok)
	require.Equal(t, 0, store.Len(), "expired entry is evicted on read")
}

func TestMemory_NoTTL(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", 0))

	val, ok := store.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", val)
}

func TestMemory_Delete(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", "1", 0))
	require.NoError(t, store.Set(ctx, "b", "2", 0))
	require.NoError(t, store.Delete(ctx, "a", "b", "missing"))

	_, ok := store.Get(ctx, "a")
	require.False(t, ok)
	_, ok = store.Get(ctx, "b")
	require.False(t, ok)
}

func TestMemory_ListKeys(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "lexicon:export:en:tags:web", "1", 0))
	require.NoError(t, store.Set(ctx, "lexicon:export:en:tags:email,web", "2", 0))
	require.NoError(t, store.Set(ctx, "lexicon:export:en", "3", 0))
	require.NoError(t, store.Set(ctx, "lexicon:export:en-US:tags:web", "4", 0))

	keys, err := store.ListKeys(ctx, "lexicon:export:en:tags:")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"lexicon:export:en:tags:web",
		"lexicon:export:en:tags:email,web",
	}, keys)
}

func TestMemory_ListKeys_SkipsExpired(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "p:live", "1", time.Minute))
	require.NoError(t, store.Set(ctx, "p:dead", "2", 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	keys, err := store.ListKeys(ctx, "p:")
	require.NoError(t, err)
	require.Equal(t, []string{"p:live"}, keys)
}
