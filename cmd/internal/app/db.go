package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"station/cmd/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDBPool builds a pgxpool with sane defaults and validates connectivity.
// It does not run migrations; see MigrateDB.
func NewDBPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.DBMaxConns > 0 {
		pcfg.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBMinConns >= 0 {
		pcfg.MinConns = cfg.DBMinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	if err := PingDB(ctx, pool, 3*time.Second); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// PingDB checks if we can acquire a connection within timeout.
func PingDB(parent context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	conn.Release()
	return nil
}

// MigrateDB applies pending embedded migrations to cfg.DBSchema.
// Concurrent starts are serialized inside migrate.Up.
func MigrateDB(ctx context.Context, pool *pgxpool.Pool, cfg Config, log *slog.Logger) error {
	applied, err := migrate.Up(ctx, pool, cfg.DBSchema)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", cfg.DBSchema, err)
	}
	if len(applied) > 0 {
		log.Info("db.migrate.applied", "schema", cfg.DBSchema, "versions", applied)
		return nil
	}
	log.Info("db.migrate.up_to_date", "schema", cfg.DBSchema)
	return nil
}
