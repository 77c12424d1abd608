package notification

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newHiddenStore(t *testing.T) *HiddenStore {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewHiddenStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestHiddenStoreHideAndLoad(t *testing.T) {
	store := newHiddenStore(t)
	ctx := context.Background()

	require.NoError(t, store.Hide(ctx, "user:1", 10, 20))
	require.NoError(t, store.Hide(ctx, "user:2", 30))

	hidden, err := store.Load(ctx, "user:1")
	require.NoError(t, err)
	require.Equal(t, map[int64]struct{}{10: {}, 20: {}}, hidden)

	other, err := store.Load(ctx, "user:2")
	require.NoError(t, err)
	require.Equal(t, map[int64]struct{}{30: {}}, other)
}

func TestHiddenStorePruneDropsStale(t *testing.T) {
	store := newHiddenStore(t)
	ctx := context.Background()

	require.NoError(t, store.Hide(ctx, "user:1", 1, 2, 3))

	kept, err := store.Prune(ctx, "user:1", map[int64]struct{}{2: {}, 4: {}})
	require.NoError(t, err)
	require.Equal(t, map[int64]struct{}{2: {}}, kept)

	// Pemangkasan juga persisten, bukan hanya hasil kembalian.
	reloaded, err := store.Load(ctx, "user:1")
	require.NoError(t, err)
	require.Equal(t, map[int64]struct{}{2: {}}, reloaded)
}

func TestHiddenStoreScopes(t *testing.T) {
	store := newHiddenStore(t)
	ctx := context.Background()

	require.NoError(t, store.Hide(ctx, "user:1", 1))
	require.NoError(t, store.Hide(ctx, "", 2))

	scopes, err := store.Scopes(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"user:1", "anon"}, scopes)
}

func TestHiddenStoreClear(t *testing.T) {
	store := newHiddenStore(t)
	ctx := context.Background()

	require.NoError(t, store.Hide(ctx, "user:1", 1, 2))
	require.NoError(t, store.Clear(ctx, "user:1"))

	hidden, err := store.Load(ctx, "user:1")
	require.NoError(t, err)
	require.Empty(t, hidden)
}
