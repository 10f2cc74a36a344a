package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// MinBytes is the smallest entropy accepted by New.
	MinBytes = 16

	// DefaultBytes matches the 30-byte uid length of the legacy cookie format.
	DefaultBytes = 30
)

var enc = base64.RawURLEncoding

// New returns a base64url encoding of nBytes random bytes.
func New(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = DefaultBytes
	}
	if nBytes < MinBytes {
		return "", ErrTooShort
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token: read random: %w", err)
	}
	return enc.EncodeToString(b), nil
}

// Valid reports whether s looks like a value produced by New with at least
// MinBytes of entropy. It does not say anything about whether s was issued.
func Valid(s string) bool {
	if len(s) < enc.EncodedLen(MinBytes) || len(s) > 512 {
		return false
	}
	_, err := enc.DecodeString(s)
	return err == nil
}
