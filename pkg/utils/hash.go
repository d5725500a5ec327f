package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashString returns the hex SHA-256 of input.
func HashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// HashEmail hashes an address for log correlation. Case and surrounding spaces are
// ignored so the intake and the relay log the same value for one sender. Empty
// addresses hash to "".
func HashEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return ""
	}
	return HashString(normalized)
}
