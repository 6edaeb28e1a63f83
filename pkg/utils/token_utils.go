package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken returns length random bytes hex-encoded. Used for
// the diagnostic device tags assigned to reports that arrive without one.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("utils.GenerateSecureToken: %w", err)
	}
	return hex.EncodeToString(b), nil
}
