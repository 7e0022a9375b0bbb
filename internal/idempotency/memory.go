package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

type inflightCall struct {
	done    chan struct{}
	payload []byte
	err     error
}

// MemoryStore is the process-local idempotency store. An in-flight marker per
// key closes the read-then-write gap: the second concurrent caller blocks on
// the first computation instead of running its own.
type MemoryStore struct {
	mu           sync.Mutex
	entries      map[string]memoryEntry
	inflight     map[string]*inflightCall
	timeProvider func() time.Time
}

// NewMemoryStore creates a new in-memory idempotency store.
func NewMemoryStore(timeProvider func() time.Time) *MemoryStore {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &MemoryStore{
		entries:      make(map[string]memoryEntry),
		inflight:     make(map[string]*inflightCall),
		timeProvider: timeProvider,
	}
}

func (m *MemoryStore) GetOrCompute(ctx context.Context, key string, fn ComputeFn) ([]byte, bool, error) {
	m.mu.Lock()

	if entry, ok := m.entries[key]; ok && m.timeProvider().Before(entry.expiresAt) {
		m.mu.Unlock()
		return entry.payload, true, nil
	}

	if call, ok := m.inflight[key]; ok {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.payload, true, call.err
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	call := &inflightCall{done: make(chan struct{})}
	m.inflight[key] = call
	m.mu.Unlock()

	call.payload, call.err = fn()

	m.mu.Lock()
	delete(m.inflight, key)
	if call.err == nil {
		m.entries[key] = memoryEntry{
			payload:   call.payload,
			expiresAt: m.timeProvider().Add(EntryTTL),
		}
	}
	m.mu.Unlock()
	close(call.done)

	return call.payload, false, call.err
}

// Sweep drops expired entries to bound memory.
func (m *MemoryStore) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.timeProvider()
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}
