package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxBytes is the input limit of bcrypt; longer inputs are rejected, not truncated.
const bcryptMaxBytes = 72

// Bcrypt hashes secrets with bcrypt. It exists for deployments migrating
// from bcrypt-hashed rows and for operators who prefer it.
type Bcrypt struct {
	Cost int
}

// Hash hashes secret with bcrypt at the configured cost.
func (b Bcrypt) Hash(secret string) (string, error) {
	if len(secret) > bcryptMaxBytes {
		return "", ErrPasswordTooLong
	}
	cost := b.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether secret matches a bcrypt encoded hash.
func (b Bcrypt) Verify(encodedHash, secret string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}

func isBcryptHash(encoded string) bool {
	if len(encoded) < 4 || encoded[0] != '$' || encoded[1] != '2' {
		return false
	}
	switch encoded[2] {
	case 'a', 'b', 'y':
		return encoded[3] == '$'
	default:
		return false
	}
}
