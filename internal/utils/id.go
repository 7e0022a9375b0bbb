package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOTPCode generates a cryptographically secure 4-digit code in 1000–9999.
// Four digits keep the code user-typable; brute force is bounded by attempt
// limits and the short TTL, not by the code space.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

// GenerateSecureID generates a secure random ID for bookings
func GenerateSecureID(prefix string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(999999))

	// Use timestamp + random for uniqueness
	return fmt.Sprintf("%s%d%06d", prefix, time.Now().Unix(), n.Int64())
}
