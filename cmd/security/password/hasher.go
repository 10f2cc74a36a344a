package password

import "strings"

// Supported hashing algorithms.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// Hasher is a one-way, salted hash with a constant-time verify.
//
// Because every Hash call uses a fresh salt, an encoded hash can never be
// used as a lookup key: hashing the same input twice yields different strings.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(encodedHash, secret string) (bool, error)
}

// Hasher returns the policy-free hasher described by c.
// New hashes use c.Algorithm; Verify accepts both Argon2id and bcrypt encodings.
func (c Config) Hasher() Hasher {
	return multiHasher{
		algorithm: c.Algorithm,
		argon:     Argon2id{Params: c.Params},
		bcrypt:    Bcrypt{Cost: c.BcryptCost},
	}
}

type multiHasher struct {
	algorithm string
	argon     Argon2id
	bcrypt    Bcrypt
}

func (m multiHasher) Hash(secret string) (string, error) {
	switch m.algorithm {
	case AlgorithmArgon2id, "":
		return m.argon.Hash(secret)
	case AlgorithmBcrypt:
		return m.bcrypt.Hash(secret)
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

func (m multiHasher) Verify(encodedHash, secret string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, argon2Prefix):
		return m.argon.Verify(encodedHash, secret)
	case isBcryptHash(encodedHash):
		return m.bcrypt.Verify(encodedHash, secret)
	default:
		return false, ErrInvalidHash
	}
}

// Hash validates password against the policy and hashes it.
func (c Config) Hash(password string) (string, error) {
	if err := c.Validate(password); err != nil {
		return "", err
	}
	return c.Hasher().Hash(password)
}

// Verify checks whether password matches the given encoded hash.
func (c Config) Verify(encodedHash, password string) (bool, error) {
	return c.Hasher().Verify(encodedHash, password)
}
