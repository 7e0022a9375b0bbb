package otp

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	phone     string
	expiresAt time.Time
	used      bool
	usedAt    time.Time
}

// MemorySessionStore is the process-local session store. Consumed sessions are
// kept as tombstones until their original expiry so reuse reports "used"
// rather than "missing".
type MemorySessionStore struct {
	mu           sync.Mutex
	sessions     map[string]*memorySession
	timeProvider func() time.Time
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore(timeProvider func() time.Time) *MemorySessionStore {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	return &MemorySessionStore{
		sessions:     make(map[string]*memorySession),
		timeProvider: timeProvider,
	}
}

func (m *MemorySessionStore) Create(_ context.Context, phone string) (*Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	expiresAt := m.timeProvider().Add(SessionTTL)

	m.mu.Lock()
	m.sessions[token] = &memorySession{phone: phone, expiresAt: expiresAt}
	m.mu.Unlock()

	return &Session{Token: token, Phone: phone, ExpiresAt: expiresAt}, nil
}

// Consume marks the session used under the store lock, so two concurrent calls
// with the same token cannot both succeed.
func (m *MemorySessionStore) Consume(_ context.Context, token string) (ConsumeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[token]
	if !ok {
		return ConsumeResult{Reason: ReasonMissing}, nil
	}

	now := m.timeProvider()
	if rec.used {
		return ConsumeResult{Reason: ReasonUsed}, nil
	}
	if now.After(rec.expiresAt) {
		delete(m.sessions, token)
		return ConsumeResult{Reason: ReasonExpired}, nil
	}

	rec.used = true
	rec.usedAt = now
	return ConsumeResult{OK: true, Phone: rec.phone}, nil
}

// Sweep drops expired sessions and stale tombstones.
func (m *MemorySessionStore) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.timeProvider()
	for token, rec := range m.sessions {
		if now.After(rec.expiresAt) {
			delete(m.sessions, token)
		}
	}
}
