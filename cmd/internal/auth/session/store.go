package session

import (
	"context"
	"log/slog"
	"time"

	"station/cmd/internal/sweep"

	"github.com/alexedwards/scs/v2"
)

// Row mirrors a sessions row. ExpiresAt has one-second resolution.
type Row struct {
	SessionID string
	ExpiresAt time.Time
	Data      []byte
}

// Store is the session persistence boundary consumed by scs.SessionManager.
type Store interface {
	scs.Store
	scs.CtxStore
	scs.IterableStore
	scs.IterableCtxStore

	// SweepExpired deletes sessions whose deadline is at or before now.
	SweepExpired(ctx context.Context) (int64, error)

	// StopCleanup stops the store's sweeper.
	StopCleanup()
}

// Option configures a store.
type Option func(*options) error

type options struct {
	schema string
	table  string

	now          func() time.Time
	log          *slog.Logger
	sweepObs     sweep.Observer
	sweepEvery   time.Duration
	sweepMaxFail int
	sweepOff     bool
}

func defaultOptions() options {
	return options{
		schema:       "station",
		table:        "sessions",
		now:          time.Now,
		log:          slog.Default(),
		sweepEvery:   sweep.DefaultInterval,
		sweepMaxFail: sweep.DefaultMaxFailures,
	}
}

func applyOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return options{}, err
		}
	}
	return o, nil
}

// WithSchema sets the Postgres schema (default "station").
func WithSchema(schema string) Option {
	return func(o *options) error {
		if !pgIdentRe.MatchString(schema) {
			return ErrConfig
		}
		o.schema = schema
		return nil
	}
}

// WithTable sets the Postgres table name (default "sessions").
func WithTable(table string) Option {
	return func(o *options) error {
		if !pgIdentRe.MatchString(table) {
			return ErrConfig
		}
		o.table = table
		return nil
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now != nil {
			o.now = now
		}
		return nil
	}
}

// WithLogger sets the logger used by the sweeper.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) error {
		if log != nil {
			o.log = log
		}
		return nil
	}
}

// WithSweepObserver registers an observer for the store's sweeper.
func WithSweepObserver(obs sweep.Observer) Option {
	return func(o *options) error {
		o.sweepObs = obs
		return nil
	}
}

// WithSweepInterval sets the period between sweeps (default 15m).
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return ErrConfig
		}
		o.sweepEvery = d
		return nil
	}
}

// WithSweepMaxFailures sets the fail-stop threshold of the sweeper.
func WithSweepMaxFailures(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return ErrConfig
		}
		o.sweepMaxFail = n
		return nil
	}
}

// WithoutSweeper skips starting the background sweeper.
func WithoutSweeper() Option {
	return func(o *options) error {
		o.sweepOff = true
		return nil
	}
}

func startSweeper(o options, name string, fn sweep.DeleteFunc) *sweep.Sweeper {
	if o.sweepOff {
		return nil
	}
	s := sweep.New(name, fn,
		sweep.WithInterval(o.sweepEvery),
		sweep.WithMaxFailures(o.sweepMaxFail),
		sweep.WithLogger(o.log),
		sweep.WithObserver(o.sweepObs),
	)
	s.Start(context.Background())
	return s
}
