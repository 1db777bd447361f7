// Package cache implements the keyed result cache that sits in front of
// the category indexers. A Store holds serialized values with a TTL; the
// Cache wrapper namespaces keys and degrades to always-miss when the
// backing store is unavailable, so callers stay correct (just slower)
// without a cache.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
// An expired entry is indistinguishable from an absent one.
var ErrMiss = errors.New("cache: miss")

// Store is a keyed byte store with per-entry TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}

// Memory is an in-process Store with lazy expiry. Entries are checked
// against the clock on read; Set overwrites unconditionally.
type Memory struct {
	// now is the clock; tests inject a fake.
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the value for key, or ErrMiss if absent or expired.
// Expired entries are removed on read.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}

	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)

		return nil, ErrMiss
	}

	return e.value, nil
}

// Set stores value under key for ttl.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}

	return nil
}

// Delete removes key, reporting whether an entry existed.
func (m *Memory) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.entries[key]
	delete(m.entries, key)

	return ok, nil
}
