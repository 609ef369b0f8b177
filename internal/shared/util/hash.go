package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashString returns the hex sha256 of s. Used to correlate prompts and
// model responses in logs without writing their content.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first 12 hex characters of HashString.
func ShortHash(s string) string {
	return HashString(s)[:12]
}
