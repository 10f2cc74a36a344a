package session

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"station/cmd/internal/sweep"
)

// Config controls the session manager and its store.
type Config struct {
	// Lifetime is the absolute lifetime of a session.
	Lifetime time.Duration

	// IdleTimeout expires sessions without activity. Zero disables it.
	IdleTimeout time.Duration

	CookieName     string
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieSameSite http.SameSite

	// Table is the Postgres table backing the store.
	Table string

	SweepInterval    time.Duration
	SweepMaxFailures int
}

// DefaultConfig returns a one-day persistent session cookie.
func DefaultConfig() Config {
	return Config{
		Lifetime:         24 * time.Hour,
		CookieName:       "station_session",
		CookiePath:       "/",
		CookieSecure:     true,
		CookieSameSite:   http.SameSiteLaxMode,
		Table:            "sessions",
		SweepInterval:    sweep.DefaultInterval,
		SweepMaxFailures: sweep.DefaultMaxFailures,
	}
}

// Validate checks invariants.
func (c Config) Validate() error {
	if c.Lifetime < time.Second {
		return ErrConfig
	}
	if c.IdleTimeout < 0 || (c.IdleTimeout > 0 && c.IdleTimeout > c.Lifetime) {
		return ErrConfig
	}
	if strings.TrimSpace(c.CookieName) == "" {
		return ErrConfig
	}
	if !pgIdentRe.MatchString(c.Table) {
		return ErrConfig
	}
	if c.SweepInterval <= 0 || c.SweepMaxFailures <= 0 {
		return ErrConfig
	}
	if c.CookieSameSite == http.SameSiteNoneMode && !c.CookieSecure {
		return ErrConfig
	}
	return nil
}

// StoreOptions maps the store-related fields onto store options.
func (c Config) StoreOptions() []Option {
	return []Option{
		WithTable(c.Table),
		WithSweepInterval(c.SweepInterval),
		WithSweepMaxFailures(c.SweepMaxFailures),
	}
}

// LoadConfigFromEnv loads session configuration.
//
// Optional:
//   - STATION_SESSION_LIFETIME
//   - STATION_SESSION_IDLE_TIMEOUT
//   - STATION_SESSION_COOKIE_NAME
//   - STATION_SESSION_COOKIE_DOMAIN
//   - STATION_SESSION_COOKIE_SECURE
//   - STATION_SESSION_COOKIE_SAMESITE (lax|strict|none)
//   - STATION_SESSION_TABLE
//   - STATION_SESSION_SWEEP_INTERVAL
//   - STATION_SESSION_SWEEP_MAX_FAILURES
//
// Returns ErrConfig if any value is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := env("STATION_SESSION_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.Lifetime = d
	}
	if v := env("STATION_SESSION_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.IdleTimeout = d
	}
	if v := env("STATION_SESSION_COOKIE_NAME"); v != "" {
		cfg.CookieName = v
	}
	if v := env("STATION_SESSION_COOKIE_DOMAIN"); v != "" {
		cfg.CookieDomain = v
	}
	if v := env("STATION_SESSION_COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.CookieSecure = b
	}
	if v := env("STATION_SESSION_COOKIE_SAMESITE"); v != "" {
		ss, ok := ParseSameSite(v)
		if !ok {
			return Config{}, ErrConfig
		}
		cfg.CookieSameSite = ss
	}
	if v := env("STATION_SESSION_TABLE"); v != "" {
		cfg.Table = v
	}
	if v := env("STATION_SESSION_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.SweepInterval = d
	}
	if v := env("STATION_SESSION_SWEEP_MAX_FAILURES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.SweepMaxFailures = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseSameSite maps lax, strict and none onto http.SameSite.
func ParseSameSite(v string) (http.SameSite, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "lax":
		return http.SameSiteLaxMode, true
	case "strict":
		return http.SameSiteStrictMode, true
	case "none":
		return http.SameSiteNoneMode, true
	default:
		return http.SameSiteDefaultMode, false
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
