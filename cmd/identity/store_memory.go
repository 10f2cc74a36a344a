package identity

import (
	"context"
	"strings"
	"sync"

	"station/cmd/security/password"
)

// MemoryStore is a dev-only fallback when no database is configured.
type MemoryStore struct {
	mu sync.RWMutex
	pw password.Config

	byID       map[string]UserAuth
	byUsername map[string]string
	byEmail    map[string]string
}

// NewMemoryStore returns an empty MemoryStore hashing with pw.
func NewMemoryStore(pw password.Config) *MemoryStore {
	return &MemoryStore{
		pw:         pw,
		byID:       make(map[string]UserAuth),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	rec, usernameNorm, emailNorm, err := newUserRecord(op, in, s.pw.Hash)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[usernameNorm]; ok {
		return User{}, ConflictError{Op: op, Field: "username"}
	}
	if _, ok := s.byEmail[emailNorm]; ok {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	s.byID[rec.ID] = rec
	s.byUsername[usernameNorm] = rec.ID
	s.byEmail[emailNorm] = rec.ID
	return rec.User, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, pgInvalid(op, "missing id")
	}
	if !validUserID(id) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return rec.User, nil
}

func (s *MemoryStore) GetUserAuthByUsername(ctx context.Context, username string) (UserAuth, error) {
	const op = "identity.GetUserAuthByUsername"

	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}
	norm := NormalizeUsername(username)
	if norm == "" {
		return UserAuth{}, pgInvalid(op, "missing username")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[norm]
	if !ok {
		return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
	}
	return s.byID[id], nil
}
