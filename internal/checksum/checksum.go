// Package checksum hashes stored content and secrets.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// String is Sum for string input. Reset tokens are persisted as String(token).
func String(s string) string {
	return Sum([]byte(s))
}

// ETag formats a digest of data as a strong HTTP entity tag.
func ETag(data []byte) string {
	return `"` + Sum(data) + `"`
}
