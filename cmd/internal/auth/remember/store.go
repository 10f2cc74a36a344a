package remember

import (
	"context"
	"time"
)

// Row mirrors a remember_tokens row.
// ExpiresAt has one-second resolution; the column stores epoch seconds.
type Row struct {
	ID         int64
	LookupID   string
	SecretHash string
	UserID     string
	ExpiresAt  time.Time
}

// Store is the persistence boundary of the vault. Implementations hold no
// validation logic; expiry and hash checks belong to the Vault.
type Store interface {
	// Insert stores a new row. A lookup id collision returns ErrDuplicateLookup.
	Insert(ctx context.Context, row Row) error

	// GetByLookup loads the row for lookupID or returns ErrNotFound.
	GetByLookup(ctx context.Context, lookupID string) (Row, error)

	// DeleteByLookup removes one row. Missing rows are not an error.
	DeleteByLookup(ctx context.Context, lookupID string) (int64, error)

	// DeleteByUser removes every row of a user.
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes rows whose deadline is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
