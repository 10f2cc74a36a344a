package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"station/cmd/internal/sweep"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresStore implements Store over <schema>.sessions.
// The pgx pool is owned by the caller; this store never closes it.
type PostgresStore struct {
	pool    *pgxpool.Pool
	table   string
	now     func() time.Time
	sweeper *sweep.Sweeper
}

// NewPostgresStore constructs a PostgresStore and starts its sweeper.
func NewPostgresStore(pool *pgxpool.Pool, opts ...Option) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	s := &PostgresStore{
		pool:  pool,
		table: pgx.Identifier{o.schema, o.table}.Sanitize(),
		now:   o.now,
	}
	s.sweeper = startSweeper(o, o.table, s.SweepExpired)
	return s, nil
}

// FindCtx returns the data for a live session token.
// Expired rows are filtered, not deleted.
func (s *PostgresStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	var b []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM `+s.table+` WHERE session_id = $1 AND expires > $2`,
		token, s.now().Unix(),
	).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, persistErr("find", err)
	}
	return b, true, nil
}

// CommitCtx upserts a session in a single statement.
func (s *PostgresStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.table+` (session_id, data, expires)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO UPDATE
		    SET data = EXCLUDED.data, expires = EXCLUDED.expires`,
		token, b, expiry.Unix(),
	)
	if err != nil {
		return persistErr("commit", err)
	}
	return nil
}

// DeleteCtx removes a session. Missing sessions are not an error.
func (s *PostgresStore) DeleteCtx(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE session_id = $1`, token); err != nil {
		return persistErr("delete", err)
	}
	return nil
}

// AllCtx returns every live session keyed by token.
func (s *PostgresStore) AllCtx(ctx context.Context) (map[string][]byte, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT session_id, data FROM `+s.table+` WHERE expires > $1`, s.now().Unix())
	if err != nil {
		return nil, persistErr("all", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			token string
			data  []byte
		)
		if err := rows.Scan(&token, &data); err != nil {
			return nil, persistErr("all", err)
		}
		out[token] = data
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("all", err)
	}
	return out, nil
}

// SweepExpired deletes rows with expires <= now.
func (s *PostgresStore) SweepExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE expires <= $1`, s.now().Unix())
	if err != nil {
		return 0, persistErr("sweep", err)
	}
	return tag.RowsAffected(), nil
}

// Find implements scs.Store.
func (s *PostgresStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

// Commit implements scs.Store.
func (s *PostgresStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

// Delete implements scs.Store.
func (s *PostgresStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

// All implements scs.IterableStore.
func (s *PostgresStore) All() (map[string][]byte, error) {
	return s.AllCtx(context.Background())
}

// StopCleanup stops the sweeper.
func (s *PostgresStore) StopCleanup() {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
}

// Close stops the sweeper. The pool is left open.
func (s *PostgresStore) Close() error {
	s.StopCleanup()
	return nil
}
