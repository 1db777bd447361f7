package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore errors on every operation, simulating an unavailable
// cache backend.
type brokenStore struct{}

func (brokenStore) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, errors.New("backend down")
}

func (brokenStore) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return errors.New("backend down")
}

func (brokenStore) Delete(_ context.Context, _ string) (bool, error) {
	return false, errors.New("backend down")
}

func TestMemory_SetGetExpiry(t *testing.T) {
	now := time.Now()
	store := NewMemory()
	store.now = func() time.Time { return now }

	ctx := context.Background()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	// Advance past the TTL: the entry must read as a miss.
	now = now.Add(2 * time.Minute)

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemory_Delete(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	ok, err := store.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWithCache_FetchesOnceOnWorkingBackend(t *testing.T) {
	c := New(NewMemory(), time.Minute, nil)
	ctx := context.Background()

	var fetches atomic.Int32

	fetch := func(_ context.Context) ([]string, error) {
		fetches.Add(1)

		return []string{"a", "b"}, nil
	}

	first, err := WithCache(ctx, c, "things", 0, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, first)

	second, err := WithCache(ctx, c, "things", 0, fetch)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.EqualValues(t, 1, fetches.Load())
}

func TestWithCache_BrokenBackendFetchesEveryTime(t *testing.T) {
	c := New(brokenStore{}, time.Minute, nil)
	ctx := context.Background()

	var fetches atomic.Int32

	fetch := func(_ context.Context) (int, error) {
		fetches.Add(1)

		return 42, nil
	}

	for range 2 {
		got, err := WithCache(ctx, c, "answer", 0, fetch)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	}

	assert.EqualValues(t, 2, fetches.Load())
}

func TestWithCache_NilStoreAlwaysMisses(t *testing.T) {
	c := New(nil, 0, nil)
	ctx := context.Background()

	var fetches atomic.Int32

	for range 2 {
		_, err := WithCache(ctx, c, "k", 0, func(_ context.Context) (string, error) {
			fetches.Add(1)

			return "v", nil
		})
		require.NoError(t, err)
	}

	assert.EqualValues(t, 2, fetches.Load())
}

func TestWithCache_FetchErrorPropagatesAndSkipsStore(t *testing.T) {
	store := NewMemory()
	c := New(store, time.Minute, nil)
	ctx := context.Background()

	boom := errors.New("remote down")

	_, err := WithCache(ctx, c, "k", 0, func(_ context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Get(ctx, keyNamespace+"k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCache_KeysAreNamespaced(t *testing.T) {
	store := NewMemory()
	c := New(store, time.Minute, nil)
	ctx := context.Background()

	c.Set(ctx, "newsletters", []int{1}, 0)

	_, err := store.Get(ctx, "newsletters")
	assert.ErrorIs(t, err, ErrMiss, "unprefixed key must not exist")

	_, err = store.Get(ctx, keyNamespace+"newsletters")
	assert.NoError(t, err)
}

func TestCache_CorruptEntryReadsAsMiss(t *testing.T) {
	store := NewMemory()
	c := New(store, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, keyNamespace+"k", []byte("{not json"), time.Minute))

	var out []string

	err := c.Get(ctx, "k", &out)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCache_Delete(t *testing.T) {
	c := New(NewMemory(), time.Minute, nil)
	ctx := context.Background()

	c.Set(ctx, "k", "v", 0)

	assert.True(t, c.Delete(ctx, "k"))
	assert.False(t, c.Delete(ctx, "k"))

	brokenCache := New(brokenStore{}, time.Minute, nil)
	assert.False(t, brokenCache.Delete(ctx, "k"))
}
