package otp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

const (
	// SessionTTL is how long a verified-phone authorization ticket stays
	// consumable before the user must verify again.
	SessionTTL = 10 * time.Minute

	sessionTokenBytes = 32
)

// ConsumeReason explains a failed Consume.
type ConsumeReason string

const (
	ReasonMissing ConsumeReason = "missing"
	ReasonUsed    ConsumeReason = "used"
	ReasonExpired ConsumeReason = "expired"
)

// Session is a single-use authorization ticket minted after an OTP verifies,
// decoupling phone verification from the final booking write.
type Session struct {
	Token     string    `json:"token"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConsumeResult is the outcome of consuming a session token.
type ConsumeResult struct {
	OK     bool
	Phone  string
	Reason ConsumeReason
}

// SessionStore mints and one-time-consumes authorization tickets. Consume must
// be atomic: concurrent calls with the same token yield exactly one success.
type SessionStore interface {
	Create(ctx context.Context, phone string) (*Session, error)
	Consume(ctx context.Context, token string) (ConsumeResult, error)
}

// newSessionToken returns an unguessable opaque token (32 random bytes,
// base64url encoded).
func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
