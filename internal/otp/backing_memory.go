package otp

import (
	"context"
	"sync"
	"time"
)

// MemoryBackingStore keeps OTP records in a process-local map.
type MemoryBackingStore struct {
	mu           sync.Mutex
	records      map[string]Record
	timeProvider func() time.Time
}

// NewMemoryBackingStore creates a new in-memory OTP backing store.
func NewMemoryBackingStore(timeProvider func() time.Time) *MemoryBackingStore {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &MemoryBackingStore{
		records:      make(map[string]Record),
		timeProvider: timeProvider,
	}
}

func (m *MemoryBackingStore) Put(_ context.Context, phone string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[phone] = rec
	return nil
}

func (m *MemoryBackingStore) Get(_ context.Context, phone string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[phone]
	if !ok {
		return nil, nil
	}
	if m.timeProvider().After(rec.ExpiresAt) {
		delete(m.records, phone)
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryBackingStore) Delete(_ context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, phone)
	return nil
}

// Sweep drops expired records to bound memory between requests.
func (m *MemoryBackingStore) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.timeProvider()
	for phone, rec := range m.records {
		if now.After(rec.ExpiresAt) {
			delete(m.records, phone)
		}
	}
}
