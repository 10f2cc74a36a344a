package identity

import (
	"context"
	"strings"
	"time"
)

// DefaultBio is assigned to new accounts.
const DefaultBio = "This user hasn't set a bio."

// User is the public view of an account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAuth carries the stored password hash next to the user.
// It must never be serialized to clients.
type UserAuth struct {
	User
	PasswordHash string
}

// CreateUserInput describes a registration request.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Now      time.Time
}

// Store is the identity persistence boundary.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)

	// GetUserAuthByUsername matches on the normalized username.
	GetUserAuthByUsername(ctx context.Context, username string) (UserAuth, error)
}

// newUserRecord validates and normalizes in, hashes the password and
// allocates the id. Shared by every Store implementation.
func newUserRecord(op string, in CreateUserInput, hash func(string) (string, error)) (UserAuth, string, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if msg := validateUsername(username); msg != "" {
		return UserAuth{}, "", "", OpError{Op: op, Kind: ErrInvalidInput, Msg: msg}
	}
	if msg := validateEmail(email); msg != "" {
		return UserAuth{}, "", "", OpError{Op: op, Kind: ErrInvalidInput, Msg: msg}
	}
	if in.Password == "" {
		return UserAuth{}, "", "", OpError{Op: op, Kind: ErrInvalidInput, Msg: "password is required"}
	}

	pwHash, err := hash(in.Password)
	if err != nil {
		return UserAuth{}, "", "", OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC().Truncate(time.Microsecond)

	id, err := newUserID(now)
	if err != nil {
		return UserAuth{}, "", "", err
	}

	rec := UserAuth{
		User: User{
			ID:        id,
			Username:  username,
			Email:     email,
			Bio:       DefaultBio,
			CreatedAt: now,
		},
		PasswordHash: pwHash,
	}
	return rec, NormalizeUsername(username), NormalizeEmail(email), nil
}
