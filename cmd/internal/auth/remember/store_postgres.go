package remember

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over <schema>.remember_tokens.
// The pgx pool is owned by the caller; this store never closes it.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// PostgresOption configures the store.
type PostgresOption func(*postgresOptions) error

type postgresOptions struct {
	schema string
	table  string
}

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the schema (default "station").
func WithSchema(schema string) PostgresOption {
	return func(o *postgresOptions) error {
		schema = strings.TrimSpace(schema)
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("remember: invalid schema identifier")
		}
		o.schema = schema
		return nil
	}
}

// WithTable sets the table name (default "remember_tokens").
func WithTable(table string) PostgresOption {
	return func(o *postgresOptions) error {
		table = strings.TrimSpace(table)
		if !pgIdentRe.MatchString(table) {
			return fmt.Errorf("remember: invalid table identifier")
		}
		o.table = table
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("remember: nil pool")
	}
	o := postgresOptions{schema: "station", table: "remember_tokens"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	return &PostgresStore{
		pool:  pool,
		table: pgx.Identifier{o.schema, o.table}.Sanitize(),
	}, nil
}

// Insert stores a new row.
func (s *PostgresStore) Insert(ctx context.Context, row Row) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.table+` (lookup_id, secret_hash, user_id, expires)
		 VALUES ($1, $2, $3, $4)`,
		row.LookupID, row.SecretHash, row.UserID, row.ExpiresAt.Unix(),
	)
	if isUniqueViolation(err, "lookup") {
		return ErrDuplicateLookup
	}
	return err
}

// GetByLookup loads a row by lookup id.
func (s *PostgresStore) GetByLookup(ctx context.Context, lookupID string) (Row, error) {
	var (
		row     Row
		expires int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, lookup_id, secret_hash, user_id, expires
		   FROM `+s.table+`
		  WHERE lookup_id = $1`,
		lookupID,
	).Scan(&row.ID, &row.LookupID, &row.SecretHash, &row.UserID, &expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	if err != nil {
		return Row{}, err
	}
	row.ExpiresAt = time.Unix(expires, 0).UTC()
	return row, nil
}

// DeleteByLookup removes one row.
func (s *PostgresStore) DeleteByLookup(ctx context.Context, lookupID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE lookup_id = $1`, lookupID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteByUser removes every row of a user.
func (s *PostgresStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes rows with expires <= now.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE expires <= $1`, now.Unix())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func isUniqueViolation(err error, constraintHint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" { // unique_violation
		return false
	}
	return strings.Contains(strings.ToLower(pgErr.ConstraintName), constraintHint)
}
