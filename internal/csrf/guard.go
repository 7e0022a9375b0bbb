package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	// CookieName is the double-submit cookie carrying raw|hmac.
	CookieName = "csrf_token"
	// HeaderName is where clients must echo the raw token on non-GET requests.
	HeaderName = "x-csrf-token"
	// CookieTTL bounds how long an issued token pair stays valid.
	CookieTTL = 2 * time.Hour

	rawTokenBytes = 16
	separator     = "|"
)

// Guard implements the double-submit cookie pattern. Validity is purely
// cryptographic: nothing is stored server-side.
type Guard struct {
	secret []byte
}

// NewGuard creates a guard keyed by the server secret.
func NewGuard(secret string) *Guard {
	return &Guard{secret: []byte(secret)}
}

// Issue mints a token pair. The cookie value is raw|hex(HMAC(secret, raw));
// the client receives raw separately and must echo it in the header.
func (g *Guard) Issue() (cookieValue, token string, err error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	return raw + separator + g.sign(raw), raw, nil
}

// Validate checks the header token against the HMAC-verified cookie value.
// Both comparisons are constant-time.
func (g *Guard) Validate(providedToken, cookieValue string) bool {
	if providedToken == "" || cookieValue == "" {
		return false
	}

	raw, mac, found := strings.Cut(cookieValue, separator)
	if !found || raw == "" {
		return false
	}

	expectedMAC, err := hex.DecodeString(mac)
	if err != nil {
		return false
	}
	actualMAC, err := hex.DecodeString(g.sign(raw))
	if err != nil {
		return false
	}
	if !hmac.Equal(expectedMAC, actualMAC) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(providedToken), []byte(raw)) == 1
}

func (g *Guard) sign(raw string) string {
	h := hmac.New(sha256.New, g.secret)
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}
