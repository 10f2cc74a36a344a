package session

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence wraps any datastore failure.
	ErrPersistence = errors.New("session: persistence failure")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("session: invalid config")
)

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
