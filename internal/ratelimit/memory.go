package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	count  int64
	expiry time.Time
}

// MemoryStore is the process-local counter store, used when no redis instance
// is configured. Suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu           sync.Mutex
	windows      map[string]*memoryWindow
	timeProvider func() time.Time
}

// MemoryStoreOpts allows tests to inject a clock.
type MemoryStoreOpts struct {
	TimeProvider func() time.Time
}

// NewMemoryStore creates a new in-memory counter store.
func NewMemoryStore(opts *MemoryStoreOpts) *MemoryStore {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &MemoryStore{
		windows:      make(map[string]*memoryWindow),
		timeProvider: timeProvider,
	}
}

// Incr implements Store. The window starts at the first request for the key
// and resets lazily once its expiry passes.
func (m *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.timeProvider()
	w, ok := m.windows[key]
	if !ok || now.After(w.expiry) {
		w = &memoryWindow{expiry: now.Add(window)}
		m.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// Sweep drops expired windows. Called periodically to bound memory in
// long-running single-instance deployments.
func (m *MemoryStore) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.timeProvider()
	for key, w := range m.windows {
		if now.After(w.expiry) {
			delete(m.windows, key)
		}
	}
}
