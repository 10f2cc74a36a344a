// Package migrate applies the embedded, versioned schema to PostgreSQL.
//
// Each migration runs in its own transaction, is recorded in
// <schema>.schema_migrations and is serialized across processes with a
// transaction-scoped advisory lock, so concurrent starts apply it once.
package migrate

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sql/*.sql
var embedded embed.FS

const schemaPlaceholder = "{{schema}}"

var (
	// ErrInvalidSchema is returned for schema names that are not plain identifiers.
	ErrInvalidSchema = errors.New("migrate: invalid schema identifier")

	pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	fileRe    = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.sql$`)
)

// Migration is one ordered schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrations returns the embedded migrations in version order.
func Migrations() ([]Migration, error) {
	return load(embedded, "sql")
}

func load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("migrate: read dir: %w", err)
	}

	out := make([]Migration, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("migrate: unexpected file %q", e.Name())
		}
		v, _ := strconv.Atoi(m[1])
		if prev, dup := seen[v]; dup {
			return nil, fmt.Errorf("migrate: duplicate version %d (%s, %s)", v, prev, e.Name())
		}
		seen[v] = e.Name()

		b, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("migrate: read %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: v, Name: m[2], SQL: string(b)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	for i, m := range out {
		if m.Version != i+1 {
			return nil, fmt.Errorf("migrate: version gap before %04d_%s", m.Version, m.Name)
		}
	}
	return out, nil
}

// Render substitutes the quoted schema into a migration body.
func Render(sql, schema string) (string, error) {
	if !pgIdentRe.MatchString(schema) {
		return "", ErrInvalidSchema
	}
	return strings.ReplaceAll(sql, schemaPlaceholder, pgx.Identifier{schema}.Sanitize()), nil
}

// Up applies every pending migration and returns the versions it applied.
func Up(ctx context.Context, pool *pgxpool.Pool, schema string) ([]int, error) {
	return UpTo(ctx, pool, schema, 0)
}

// UpTo applies pending migrations up to and including target.
// A target <= 0 means all of them.
func UpTo(ctx context.Context, pool *pgxpool.Pool, schema string, target int) ([]int, error) {
	if pool == nil {
		return nil, errors.New("migrate: nil pool")
	}
	if !pgIdentRe.MatchString(schema) {
		return nil, ErrInvalidSchema
	}

	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}

	schemaIdent := pgx.Identifier{schema}.Sanitize()
	table := pgx.Identifier{schema, "schema_migrations"}.Sanitize()
	lockKey := advisoryKey(schema)

	// CREATE ... IF NOT EXISTS races on the catalog under concurrency; take the lock first.
	if err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+schemaIdent); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+table+` (
			version    INT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
		return err
	}); err != nil {
		return nil, fmt.Errorf("migrate: bootstrap: %w", err)
	}

	var applied []int
	for _, m := range migrations {
		if target > 0 && m.Version > target {
			break
		}
		body, err := Render(m.SQL, schema)
		if err != nil {
			return applied, err
		}

		did := false
		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
				return err
			}
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE version = $1)`, m.Version,
			).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return nil
			}
			if _, err := tx.Exec(ctx, body); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO `+table+` (version, name) VALUES ($1, $2)`, m.Version, m.Name,
			); err != nil {
				return err
			}
			did = true
			return nil
		})
		if err != nil {
			return applied, fmt.Errorf("migrate: %04d_%s: %w", m.Version, m.Name, err)
		}
		if did {
			applied = append(applied, m.Version)
		}
	}

	return applied, nil
}

// Version returns the highest applied version, or 0 for a fresh schema.
func Version(ctx context.Context, pool *pgxpool.Pool, schema string) (int, error) {
	if !pgIdentRe.MatchString(schema) {
		return 0, ErrInvalidSchema
	}
	table := pgx.Identifier{schema, "schema_migrations"}.Sanitize()

	var v int
	err := pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM `+table).Scan(&v)
	return v, err
}

func advisoryKey(schema string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("station.migrate:" + schema))
	return int64(h.Sum64()) // #nosec G115 -- wraparound is fine for a lock key.
}
