package app

import (
	"errors"
	"strings"

	authapi "station/cmd/internal/auth/api"
	"station/cmd/internal/auth/session"
)

// ValidateSecurityConfig enforces the cookie policy at startup.
// Fail-fast: a misconfigured cookie is a startup error, never a warning.
func ValidateSecurityConfig(cfg Config, sessCfg session.Config, authCfg authapi.Config) error {
	sessName := strings.TrimSpace(sessCfg.CookieName)
	rememberName := strings.TrimSpace(authCfg.RememberCookieName)
	if rememberName == "" {
		rememberName = authapi.DefaultRememberCookieName
	}
	if sessName == "" {
		return errors.New("security policy: session cookie name is empty")
	}
	if sessName == rememberName {
		return errors.New("security policy: session and remember cookies share the name " + sessName)
	}

	if !cfg.RequireSecureCookies {
		return nil
	}
	if !sessCfg.CookieSecure {
		return errors.New("security policy: STATION_REQUIRE_SECURE_COOKIES=true but STATION_SESSION_COOKIE_SECURE=false")
	}
	if !authCfg.CookieSecure {
		return errors.New("security policy: STATION_REQUIRE_SECURE_COOKIES=true but STATION_AUTH_COOKIE_SECURE=false")
	}
	return nil
}
