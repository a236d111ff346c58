package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process result cache.
// Data is lost when the process exits, which is acceptable: a restart simply
// empties the cache.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]entry
	now    func() time.Time
	closed bool
}

// entry holds a cached value with its expiry.
// A zero expiresAt means the entry never expires.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock replaces the store's time source. Tests use this to control
// expiry without sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemoryStore creates a new in-memory result cache.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get implements Store. Expired entries are evicted lazily here, on read.
func (m *MemoryStore) Get(_ context.Context, chain, query string) ([]byte, bool, error) {
	key := Key(chain, query)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, false, ErrStoreClosed
	}

	e, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}

	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.data, key)
		return nil, false, nil
	}

	// Return a copy to prevent modification.
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, true, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, chain, query string, value []byte, ttl time.Duration) error {
	key := Key(chain, query)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	// Copy the value to avoid retaining the caller's slice.
	stored := make([]byte, len(value))
	copy(stored, value)

	e := entry{value: stored}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.data[key] = e

	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the number of cached entries, including any not yet evicted.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
