package remember

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a dev-only fallback when no database is configured.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]Row // lookup_id -> row
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Row)}
}

func (s *MemoryStore) Insert(ctx context.Context, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[row.LookupID]; ok {
		return ErrDuplicateLookup
	}
	s.nextID++
	row.ID = s.nextID
	row.ExpiresAt = time.Unix(row.ExpiresAt.Unix(), 0).UTC()
	s.rows[row.LookupID] = row
	return nil
}

func (s *MemoryStore) GetByLookup(ctx context.Context, lookupID string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[lookupID]
	if !ok {
		return Row{}, ErrNotFound
	}
	return row, nil
}

func (s *MemoryStore) DeleteByLookup(ctx context.Context, lookupID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[lookupID]; !ok {
		return 0, nil
	}
	delete(s.rows, lookupID)
	return 1, nil
}

func (s *MemoryStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, row := range s.rows {
		if row.UserID == userID {
			delete(s.rows, k)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Unix()
	var n int64
	for k, row := range s.rows {
		if row.ExpiresAt.Unix() <= cutoff {
			delete(s.rows, k)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored rows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
