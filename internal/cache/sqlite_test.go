package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "cache.db")

	store, err := OpenSQLite(context.Background(), dbPath, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestSQLite_SetGetDelete(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, "k", []byte("v1"), time.Minute))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// Overwrite replaces the value and expiry.
	require.NoError(t, store.Set(ctx, "k", []byte("v2"), time.Minute))

	got, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	ok, err := store.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_ExpiryAndPrune(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "long", []byte("b"), time.Hour))

	now = now.Add(10 * time.Minute)

	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrMiss)

	_, err = store.Get(ctx, "long")
	assert.NoError(t, err)

	pruned, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)
}
