// Package app wires the station server runtime: config, logging, storage,
// HTTP routes and background sweepers.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"station/cmd/identity"
	authapi "station/cmd/internal/auth/api"
	"station/cmd/internal/auth/remember"
	"station/cmd/internal/auth/session"
	"station/cmd/internal/metrics"
	"station/cmd/security/password"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App is the station server runtime. It owns the DB pool, the stores with
// their sweepers and the HTTP handler tree.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	metrics  *metrics.Metrics
	vault    *remember.Vault
	sessions session.Store
	auth     *authapi.Handler

	handler http.Handler
}

// stores groups the persistence backends chosen at startup.
type stores struct {
	users    identity.Store
	tokens   remember.Store
	sessions session.Store
}

// New constructs a fully wired App from config and logger.
// With an empty DatabaseURL every store is in-memory.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogColor)
	}

	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	rememberCfg, err := remember.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	authCfg := authapi.LoadConfigFromEnv()

	if err := ValidateSecurityConfig(cfg, sessCfg, authCfg); err != nil {
		return nil, err
	}

	m := metrics.New()
	ctx := context.Background()

	a := &App{cfg: cfg, log: log, metrics: m}

	st, err := a.newStores(ctx, pwCfg, sessCfg, m)
	if err != nil {
		return nil, err
	}
	a.sessions = st.sessions

	hasher := pwCfg.Hasher()
	vault, err := remember.NewVault(st.tokens, hasher, rememberCfg,
		remember.WithLogger(log),
		remember.WithObserver(m),
		remember.WithSweepObserver(m),
	)
	if err != nil {
		a.closeStores()
		return nil, err
	}
	a.vault = vault

	authn, err := identity.NewAuthenticator(st.users, hasher)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	manager := session.NewManager(sessCfg, st.sessions, log)
	auth, err := authapi.NewHandler(log, authCfg, st.users, authn, vault, manager)
	if err != nil {
		a.closeStores()
		return nil, err
	}
	a.auth = auth

	mux := http.NewServeMux()
	registerHTTP(mux, log, cfg, a.dbPool, a.dbEnabled, m, auth)
	a.handler = WithRequestLogging(WithSecurityHeaders(WithCORS(mux, cfg, log)), log)

	return a, nil
}

// newStores decides between Postgres-backed persistence and in-memory stores.
func (a *App) newStores(ctx context.Context, pwCfg password.Config, sessCfg session.Config, m *metrics.Metrics) (stores, error) {
	sessOpts := append(sessCfg.StoreOptions(),
		session.WithSchema(a.cfg.DBSchema),
		session.WithLogger(a.log),
		session.WithSweepObserver(m),
	)

	if a.cfg.DatabaseURL == "" {
		a.log.Info("db.disabled.inmemory_store")
		sess, err := session.NewMemoryStore(sessOpts...)
		if err != nil {
			return stores{}, err
		}
		return stores{
			users:    identity.NewMemoryStore(pwCfg),
			tokens:   remember.NewMemoryStore(),
			sessions: sess,
		}, nil
	}

	pool, err := NewDBPool(ctx, a.cfg)
	if err != nil {
		return stores{}, err
	}
	a.dbPool = pool
	a.dbEnabled = true

	if a.cfg.DBMigrate {
		if err := MigrateDB(ctx, pool, a.cfg, a.log); err != nil {
			pool.Close()
			return stores{}, err
		}
	}

	users, err := identity.NewPostgresStore(pool,
		identity.WithSchema(a.cfg.DBSchema),
		identity.WithPasswordConfig(pwCfg),
	)
	if err != nil {
		pool.Close()
		return stores{}, err
	}
	tokens, err := remember.NewPostgresStore(pool, remember.WithSchema(a.cfg.DBSchema))
	if err != nil {
		pool.Close()
		return stores{}, err
	}
	sess, err := session.NewPostgresStore(pool, sessOpts...)
	if err != nil {
		pool.Close()
		return stores{}, err
	}

	a.log.Info("db.enabled.postgres_store", "schema", a.cfg.DBSchema)
	return stores{users: users, tokens: tokens, sessions: sess}, nil
}

// Handler returns the full middleware-wrapped handler tree.
func (a *App) Handler() http.Handler { return a.handler }

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"addr", a.cfg.HTTPAddr,
		"base_url", runtimeBaseURL(a.cfg.HTTPAddr),
		"db_enabled", a.dbEnabled,
		"metrics_enabled", a.cfg.MetricsEnabled,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		a.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		a.Close()
		return err
	}

	a.Close()
	a.log.Info("server.stopped")
	return nil
}

// Close stops the sweepers and releases the pool. The vault and session
// sweepers finish before the pool they query is closed.
func (a *App) Close() {
	if a.vault != nil {
		a.vault.Close()
		a.vault = nil
	}
	a.closeStores()
}

func (a *App) closeStores() {
	if a.sessions != nil {
		a.sessions.StopCleanup()
		a.sessions = nil
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.dbPool = nil
	}
}

// runtimeBaseURL turns a listen address into a URL a local client can dial.
// Wildcard binds map to the IPv4 loopback.
func runtimeBaseURL(addr string) string {
	host, port, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return "http://" + addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
