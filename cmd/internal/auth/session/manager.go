package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// KeyUserID is the session key holding the authenticated user id.
const KeyUserID = "user_id"

// NewManager builds the scs session manager over store.
// The cookie is persistent and HttpOnly; payloads are JSON.
func NewManager(cfg Config, store Store, log *slog.Logger) *scs.SessionManager {
	if log == nil {
		log = slog.Default()
	}

	m := scs.New()
	m.Store = store
	m.Codec = JSONCodec{}
	m.Lifetime = cfg.Lifetime
	m.IdleTimeout = cfg.IdleTimeout

	m.Cookie.Name = cfg.CookieName
	m.Cookie.Domain = cfg.CookieDomain
	m.Cookie.Path = cfg.CookiePath
	m.Cookie.Secure = cfg.CookieSecure
	m.Cookie.SameSite = cfg.CookieSameSite
	m.Cookie.HttpOnly = true
	m.Cookie.Persist = true

	m.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("session.store.fail",
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	}
	return m
}

// UserID returns the authenticated user id of the request session, if any.
func UserID(ctx context.Context, m *scs.SessionManager) string {
	return m.GetString(ctx, KeyUserID)
}

// Login renews the session token and binds it to userID.
func Login(ctx context.Context, m *scs.SessionManager, userID string) error {
	if err := m.RenewToken(ctx); err != nil {
		return err
	}
	m.Put(ctx, KeyUserID, userID)
	return nil
}

// Logout destroys the session.
func Logout(ctx context.Context, m *scs.SessionManager) error {
	return m.Destroy(ctx)
}
