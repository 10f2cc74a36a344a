// Package sweep runs periodic delete-where-expired jobs for the credential
// stores.
//
// A Sweeper is owned by the store that created it. It runs once on Start,
// then on every interval, and stops itself after MaxFailures consecutive
// failed runs so a broken datastore does not produce an endless error loop.
package sweep

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DeleteFunc deletes expired rows and reports how many were removed.
type DeleteFunc func(ctx context.Context) (int64, error)

// Observer receives sweep outcomes. metrics.Metrics implements it.
type Observer interface {
	SweepRun(name string, deleted int64, err error, took time.Duration)
	SweepStopped(name string)
}

type nopObserver struct{}

func (nopObserver) SweepRun(string, int64, error, time.Duration) {}
func (nopObserver) SweepStopped(string)                          {}

const (
	DefaultInterval    = 15 * time.Minute
	DefaultRunTimeout  = 30 * time.Second
	DefaultMaxFailures = 3
)

// ErrStopped is returned by RunOnce after the sweeper has been stopped.
var ErrStopped = errors.New("sweep: stopped")

// Sweeper is a cancellable periodic task.
type Sweeper struct {
	name        string
	fn          DeleteFunc
	interval    time.Duration
	runTimeout  time.Duration
	maxFailures int
	log         *slog.Logger
	obs         Observer

	mu       sync.Mutex
	started  bool
	stopped  bool
	failures int
	cancel   context.CancelFunc
	done     chan struct{}
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithInterval sets the period between runs.
func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithRunTimeout bounds a single run.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

// WithMaxFailures sets how many consecutive failures stop the loop.
// 1 stops on the first error.
func WithMaxFailures(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.maxFailures = n
		}
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(log *slog.Logger) Option {
	return func(s *Sweeper) {
		if log != nil {
			s.log = log
		}
	}
}

// WithObserver registers an outcome observer.
func WithObserver(obs Observer) Option {
	return func(s *Sweeper) {
		if obs != nil {
			s.obs = obs
		}
	}
}

// New constructs a Sweeper. It does not start it.
func New(name string, fn DeleteFunc, opts ...Option) *Sweeper {
	s := &Sweeper{
		name:        name,
		fn:          fn,
		interval:    DefaultInterval,
		runTimeout:  DefaultRunTimeout,
		maxFailures: DefaultMaxFailures,
		log:         slog.Default(),
		obs:         nopObserver{},
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start launches the loop. The first run happens immediately.
// Calling Start twice, or after Stop, is a no-op.
func (s *Sweeper) Start(parent context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	go s.loop(ctx)
}

// Stop cancels the loop and waits for it to exit. Safe to call repeatedly.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	started := s.started
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if started {
		<-s.done
	}
}

// Done is closed when the loop exits, either via Stop, parent cancellation
// or fail-stop.
func (s *Sweeper) Done() <-chan struct{} { return s.done }

// RunOnce performs a single sweep with the configured per-run timeout.
// It does not count toward fail-stop.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return 0, ErrStopped
	}
	return s.run(ctx)
}

func (s *Sweeper) run(parent context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(parent, s.runTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.fn(ctx)
	took := time.Since(start)
	s.obs.SweepRun(s.name, n, err, took)
	return n, err
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		if !s.tick(ctx) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// tick runs one sweep and reports whether the loop should continue.
func (s *Sweeper) tick(ctx context.Context) bool {
	n, err := s.run(ctx)
	if ctx.Err() != nil {
		return false
	}

	if err == nil {
		s.mu.Lock()
		s.failures = 0
		s.mu.Unlock()
		if n > 0 {
			s.log.Info("sweep.run", "sweeper", s.name, "deleted", n)
		} else {
			s.log.Debug("sweep.run", "sweeper", s.name, "deleted", n)
		}
		return true
	}

	s.mu.Lock()
	s.failures++
	failures := s.failures
	s.mu.Unlock()

	s.log.Error("sweep.run.fail", "sweeper", s.name, "err", err, "consecutive_failures", failures)
	if failures < s.maxFailures {
		return true
	}

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.log.Error("sweep.stopped", "sweeper", s.name, "consecutive_failures", failures)
	s.obs.SweepStopped(s.name)
	return false
}
