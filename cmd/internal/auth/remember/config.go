package remember

import (
	"os"
	"strconv"
	"strings"
	"time"

	"station/cmd/internal/sweep"
	"station/cmd/security/token"
)

// Config controls token lifetime, entropy and housekeeping.
type Config struct {
	// TTL is the lifetime of a remember token.
	TTL time.Duration

	// LookupBytes and SecretBytes are the random bytes behind each half.
	LookupBytes int
	SecretBytes int

	// IssueRetries bounds re-draws of the lookup id after a unique collision.
	IssueRetries int

	SweepInterval    time.Duration
	SweepMaxFailures int

	// RotateOnUse replaces the token every time it re-establishes a session.
	RotateOnUse bool
}

// DefaultConfig matches the legacy cookie: two weeks, 30 random bytes per half.
func DefaultConfig() Config {
	return Config{
		TTL:              14 * 24 * time.Hour,
		LookupBytes:      token.DefaultBytes,
		SecretBytes:      token.DefaultBytes,
		IssueRetries:     3,
		SweepInterval:    sweep.DefaultInterval,
		SweepMaxFailures: sweep.DefaultMaxFailures,
		RotateOnUse:      true,
	}
}

// Validate checks invariants.
func (c Config) Validate() error {
	if c.TTL < time.Second {
		return ErrConfig
	}
	if c.LookupBytes < token.MinBytes || c.LookupBytes > 64 {
		return ErrConfig
	}
	if c.SecretBytes < token.MinBytes || c.SecretBytes > 64 {
		return ErrConfig
	}
	if c.IssueRetries < 0 || c.IssueRetries > 10 {
		return ErrConfig
	}
	if c.SweepInterval <= 0 || c.SweepMaxFailures <= 0 {
		return ErrConfig
	}
	return nil
}

// LoadConfigFromEnv loads remember-token configuration.
//
// Optional:
//   - STATION_REMEMBER_TTL
//   - STATION_REMEMBER_LOOKUP_BYTES
//   - STATION_REMEMBER_SECRET_BYTES
//   - STATION_REMEMBER_ISSUE_RETRIES
//   - STATION_REMEMBER_SWEEP_INTERVAL
//   - STATION_REMEMBER_SWEEP_MAX_FAILURES
//   - STATION_REMEMBER_ROTATE_ON_USE
//
// Returns ErrConfig if any value is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := env("STATION_REMEMBER_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}
	if v := env("STATION_REMEMBER_LOOKUP_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.LookupBytes = n
	}
	if v := env("STATION_REMEMBER_SECRET_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.SecretBytes = n
	}
	if v := env("STATION_REMEMBER_ISSUE_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.IssueRetries = n
	}
	if v := env("STATION_REMEMBER_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.SweepInterval = d
	}
	if v := env("STATION_REMEMBER_SWEEP_MAX_FAILURES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.SweepMaxFailures = n
	}
	if v := env("STATION_REMEMBER_ROTATE_ON_USE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.RotateOnUse = b
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
