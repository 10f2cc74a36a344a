package session

import (
	"context"
	"sync"
	"time"

	"station/cmd/internal/sweep"
)

// MemoryStore is a dev-only fallback when no database is configured.
// It follows the same expiry rules as PostgresStore.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]memItem
	now     func() time.Time
	sweeper *sweep.Sweeper
}

type memItem struct {
	data    []byte
	expires int64
}

// NewMemoryStore constructs a MemoryStore and starts its sweeper.
// Schema and table options are ignored.
func NewMemoryStore(opts ...Option) (*MemoryStore, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	s := &MemoryStore{
		items: make(map[string]memItem),
		now:   o.now,
	}
	s.sweeper = startSweeper(o, o.table, s.SweepExpired)
	return s, nil
}

func (s *MemoryStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[token]
	if !ok || it.expires <= s.now().Unix() {
		return nil, false, nil
	}
	return append([]byte(nil), it.data...), true, nil
}

func (s *MemoryStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[token] = memItem{data: append([]byte(nil), b...), expires: expiry.Unix()}
	return nil
}

func (s *MemoryStore) DeleteCtx(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, token)
	return nil
}

func (s *MemoryStore) AllCtx(ctx context.Context) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().Unix()
	out := make(map[string][]byte, len(s.items))
	for token, it := range s.items {
		if it.expires > now {
			out[token] = append([]byte(nil), it.data...)
		}
	}
	return out, nil
}

func (s *MemoryStore) SweepExpired(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	var n int64
	for token, it := range s.items {
		if it.expires <= now {
			delete(s.items, token)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

func (s *MemoryStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

func (s *MemoryStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

func (s *MemoryStore) All() (map[string][]byte, error) {
	return s.AllCtx(context.Background())
}

func (s *MemoryStore) StopCleanup() {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
}

// Len reports stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
