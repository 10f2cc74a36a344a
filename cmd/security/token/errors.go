package token

import "errors"

// Public, stable errors for callers.
var (
	ErrTooShort  = errors.New("token entropy below minimum")
	ErrMalformed = errors.New("malformed token")
)
