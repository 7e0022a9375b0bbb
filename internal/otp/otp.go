package otp

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// CodeTTL is how long an issued code stays verifiable.
	CodeTTL = 5 * time.Minute
)

// Record is the stored form of an issued code: the hash only, never the code.
type Record struct {
	CodeHash  string    `json:"code_hash"` // hex SHA-256(phone:code:salt)
	ExpiresAt time.Time `json:"expires_at"`
}

// BackingStore persists one record per phone. Put overwrites any prior record
// for the phone (last-issuance-wins); Get returns nil when absent or expired.
type BackingStore interface {
	Put(ctx context.Context, phone string, rec Record) error
	Get(ctx context.Context, phone string) (*Record, error)
	Delete(ctx context.Context, phone string) error
}

// Issuance is the metadata returned to the caller. Code is handed to the SMS
// notifier and must not be logged; handlers may echo it only outside production.
type Issuance struct {
	Code      string
	ExpiresAt time.Time
}

// Store issues and one-time-verifies short numeric codes per phone.
type Store struct {
	backing      BackingStore
	salt         string
	codeGen      func() (string, error)
	timeProvider func() time.Time
}

// StoreOpts allows tests to inject the code generator and clock.
type StoreOpts struct {
	CodeGen      func() (string, error)
	TimeProvider func() time.Time
}

// NewStore creates an OTP store. salt is mixed into the code hash so leaked
// backing data cannot be reversed by enumerating the 4-digit space.
func NewStore(backing BackingStore, salt string, codeGen func() (string, error), opts *StoreOpts) *Store {
	s := &Store{
		backing:      backing,
		salt:         salt,
		codeGen:      codeGen,
		timeProvider: time.Now,
	}
	if opts != nil && opts.CodeGen != nil {
		s.codeGen = opts.CodeGen
	}
	if opts != nil && opts.TimeProvider != nil {
		s.timeProvider = opts.TimeProvider
	}
	return s
}

// Issue generates a fresh code for phone, stores only its hash with a 5 minute
// TTL, and invalidates any previously issued code for the same phone.
func (s *Store) Issue(ctx context.Context, phone string) (*Issuance, error) {
	code, err := s.codeGen()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	expiresAt := s.timeProvider().Add(CodeTTL)
	rec := Record{
		CodeHash:  hashCode(phone, code, s.salt),
		ExpiresAt: expiresAt,
	}
	if err := s.backing.Put(ctx, phone, rec); err != nil {
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}

	return &Issuance{Code: code, ExpiresAt: expiresAt}, nil
}

// Verify checks the submitted code against the stored hash. A match consumes
// the record (one-time use); a mismatch leaves it intact so the user can retry
// within the TTL. Absent or expired records verify false. Backing failures are
// fail-closed: the error is returned and verification does not succeed.
func (s *Store) Verify(ctx context.Context, phone, submittedCode string) (bool, error) {
	rec, err := s.backing.Get(ctx, phone)
	if err != nil {
		return false, fmt.Errorf("failed to load OTP: %w", err)
	}
	if rec == nil || s.timeProvider().After(rec.ExpiresAt) {
		return false, nil
	}

	submitted := hashCode(phone, submittedCode, s.salt)
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(rec.CodeHash)) != 1 {
		return false, nil
	}

	if err := s.backing.Delete(ctx, phone); err != nil {
		return false, fmt.Errorf("failed to consume OTP: %w", err)
	}
	return true, nil
}

func hashCode(phone, code, salt string) string {
	sum := sha256.Sum256([]byte(phone + ":" + code + ":" + salt))
	return hex.EncodeToString(sum[:])
}
