package remember

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence wraps any datastore failure surfaced by the vault.
	ErrPersistence = errors.New("remember: persistence failure")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("remember: invalid config")

	// ErrInvalidInput is returned for empty user ids on Issue.
	ErrInvalidInput = errors.New("remember: invalid input")

	// ErrDuplicateLookup is returned by Store.Insert when the lookup id already exists.
	ErrDuplicateLookup = errors.New("remember: duplicate lookup id")

	// ErrNotFound is returned by Store.GetByLookup for missing rows.
	ErrNotFound = errors.New("remember: not found")
)

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
