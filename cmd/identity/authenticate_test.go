package identity

import (
	"context"
	"errors"
	"testing"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *MemoryStore) {
	t.Helper()

	cfg := fastPasswordConfig()
	s := NewMemoryStore(cfg)
	a, err := NewAuthenticator(s, cfg.Hasher())
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	return a, s
}

func TestAuthenticate_Success(t *testing.T) {
	t.Parallel()

	a, s := newTestAuthenticator(t)
	ctx, cancel := testCtx()
	defer cancel()

	u, err := s.CreateUser(ctx, CreateUserInput{Username: "Navid", Email: "n@example.com", Password: "very-strong-password-1"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := a.Authenticate(ctx, "navid", "very-strong-password-1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected %q, got %q", u.ID, got.ID)
	}
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	t.Parallel()

	a, s := newTestAuthenticator(t)
	ctx, cancel := testCtx()
	defer cancel()

	if _, err := s.CreateUser(ctx, CreateUserInput{Username: "navid", Email: "n@example.com", Password: "very-strong-password-1"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	cases := map[string][2]string{
		"wrong password": {"navid", "very-strong-password-2"},
		"unknown user":   {"ghost", "very-strong-password-1"},
		"empty username": {"", "very-strong-password-1"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.Authenticate(ctx, c[0], c[1])
			if !IsInvalidCredentials(err) {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
		})
	}
}

type failingStore struct{ *MemoryStore }

var errDown = errors.New("db down")

func (*failingStore) GetUserAuthByUsername(context.Context, string) (UserAuth, error) {
	return UserAuth{}, errDown
}

func TestAuthenticate_StoreErrorIsNotInvalidCredentials(t *testing.T) {
	t.Parallel()

	cfg := fastPasswordConfig()
	a, err := NewAuthenticator(&failingStore{MemoryStore: NewMemoryStore(cfg)}, cfg.Hasher())
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}

	_, err = a.Authenticate(context.Background(), "navid", "whatever-password")
	if !errors.Is(err, errDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	if IsInvalidCredentials(err) {
		t.Fatalf("store failure must not look like bad credentials")
	}
}
