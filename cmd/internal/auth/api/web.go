package authapi

import (
	"net/http"
	"strings"
	"time"

	"station/cmd/internal/auth/remember"
)

func (h *Handler) setRememberCookie(w http.ResponseWriter, issued remember.Issued) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.RememberCookieName,
		Value:    issued.CookieValue(),
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  issued.ExpiresAt.UTC(),
		MaxAge:   int(issued.TTL / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}

// rememberFromCookie returns the parsed remember cookie.
// A malformed value is reported as absent.
func (h *Handler) rememberFromCookie(r *http.Request) (lookupID, secret string, ok bool) {
	c, err := r.Cookie(h.cfg.RememberCookieName)
	if err != nil {
		return "", "", false
	}
	return remember.ParseCookieValue(c.Value)
}

func (h *Handler) expireRememberCookie(w http.ResponseWriter) {
	h.expireCookie(w, h.cfg.RememberCookieName, true)
}

func (h *Handler) expireCookie(w http.ResponseWriter, name string, httpOnly bool) {
	if h == nil || w == nil || strings.TrimSpace(name) == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: httpOnly,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}
