package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string // json | pretty
	LogColor  bool

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	DBSchema    string

	// DBMigrate applies embedded migrations at startup.
	DBMigrate bool

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	MetricsEnabled bool

	// Security policy: refuse to start when any auth cookie lacks Secure.
	RequireSecureCookies bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("STATION_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("STATION_LOG_LEVEL", "info"),
		LogFormat: EnvString("STATION_LOG_FORMAT", "json"),
		LogColor:  EnvBool("STATION_LOG_COLOR", true),

		ReadHeaderTimeout: EnvDuration("STATION_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("STATION_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("STATION_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("STATION_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("STATION_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("STATION_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("STATION_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("STATION_DB_MIN_CONNS", 0),
		DBSchema:    EnvString("STATION_DB_SCHEMA", "station"),
		DBMigrate:   EnvBool("STATION_DB_MIGRATE", true),

		ReadinessRequireDB: EnvBool("STATION_READINESS_REQUIRE_DB", false),

		MetricsEnabled: EnvBool("STATION_METRICS_ENABLED", true),

		RequireSecureCookies: EnvBool("STATION_REQUIRE_SECURE_COOKIES", false),

		CORSAllowedOrigins:   EnvList("STATION_CORS_ALLOWED_ORIGINS"),
		CORSAllowCredentials: EnvBool("STATION_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("STATION_CORS_MAX_AGE_SECONDS", 600),
	}
}
