package identity

import (
	"context"
	"errors"
	"fmt"

	"station/cmd/security/password"
)

// Authenticator checks username + password credentials.
//
// Unknown usernames verify against a dummy hash so response time does not
// reveal whether an account exists.
type Authenticator struct {
	store  Store
	hasher password.Hasher
	dummy  string
}

// NewAuthenticator precomputes the dummy hash with hasher.
func NewAuthenticator(store Store, hasher password.Hasher) (*Authenticator, error) {
	if store == nil || hasher == nil {
		return nil, fmt.Errorf("identity: nil store or hasher")
	}
	dummy, err := hasher.Hash("station-dummy-credential")
	if err != nil {
		return nil, fmt.Errorf("identity: dummy hash: %w", err)
	}
	return &Authenticator{store: store, hasher: hasher, dummy: dummy}, nil
}

// Authenticate returns the user for valid credentials.
// Unknown user and wrong password both return ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, pw string) (User, error) {
	const op = "identity.Authenticate"

	ua, err := a.store.GetUserAuthByUsername(ctx, username)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
		_, _ = a.hasher.Verify(a.dummy, pw)
		return User{}, OpError{Op: op, Kind: ErrInvalidCredentials}
	default:
		return User{}, err
	}

	ok, err := a.hasher.Verify(ua.PasswordHash, pw)
	if err != nil && !errors.Is(err, password.ErrInvalidHash) {
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return User{}, OpError{Op: op, Kind: ErrInvalidCredentials}
	}
	return ua.User, nil
}
