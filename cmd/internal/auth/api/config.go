package authapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Config controls auth API behavior and cookie defaults.
type Config struct {
	TrustProxy   bool
	MaxBodyBytes int64

	RememberCookieName string
	CookiePath         string
	CookieDomain       string
	CookieSecure       bool
	CookieSameSite     http.SameSite
}

// DefaultRememberCookieName is the cookie carrying "<lookupId> <secret>".
const DefaultRememberCookieName = "x-remember-me"

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		TrustProxy:         envBool("STATION_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:       envInt64("STATION_AUTH_MAX_BODY_BYTES", 1<<20), // 1 MiB
		RememberCookieName: envString("STATION_AUTH_REMEMBER_COOKIE_NAME", DefaultRememberCookieName),
		CookiePath:         envString("STATION_AUTH_COOKIE_PATH", "/"),
		CookieDomain:       envString("STATION_AUTH_COOKIE_DOMAIN", ""),
		CookieSecure:       envBool("STATION_AUTH_COOKIE_SECURE", true),
		CookieSameSite:     parseSameSite(envString("STATION_AUTH_COOKIE_SAMESITE", "lax")),
	}

	// Browsers drop SameSite=None cookies without Secure.
	if cfg.CookieSameSite == http.SameSiteNoneMode {
		cfg.CookieSecure = true
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	return cfg
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteLaxMode
	}
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
