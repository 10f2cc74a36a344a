package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"station/cmd/identity"
	"station/cmd/internal/auth/remember"
	"station/cmd/internal/auth/session"

	"github.com/alexedwards/scs/v2"
)

// Handler wires HTTP auth endpoints to the identity store, the remember-token
// vault and the session manager.
type Handler struct {
	log *slog.Logger
	cfg Config

	users    identity.Store
	authn    *identity.Authenticator
	vault    *remember.Vault
	sessions *scs.SessionManager
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, users identity.Store, authn *identity.Authenticator, vault *remember.Vault, sessions *scs.SessionManager) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if users == nil || authn == nil || vault == nil || sessions == nil {
		return nil, errors.New("auth: missing dependency")
	}
	if strings.TrimSpace(cfg.RememberCookieName) == "" {
		cfg.RememberCookieName = DefaultRememberCookieName
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	return &Handler{
		log:      log,
		cfg:      cfg,
		users:    users,
		authn:    authn,
		vault:    vault,
		sessions: sessions,
	}, nil
}

// Register wires auth routes onto the provided mux.
// Routes must be served behind Wrap so sessions are loaded.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/new", h.handleRegister)
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/hello", h.handleHello)
	mux.HandleFunc("/auth/me", h.handleMe)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc("/auth/logout_all", h.handleLogoutAll)
}

// Wrap loads the session and applies the remember-me fallback.
func (h *Handler) Wrap(next http.Handler) http.Handler {
	return h.sessions.LoadAndSave(h.RememberMiddleware(next))
}

// RememberMiddleware re-establishes a session from the remember cookie when
// the session carries no user. It must run inside LoadAndSave.
func (h *Handler) RememberMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if session.UserID(ctx, h.sessions) != "" {
			next.ServeHTTP(w, r)
			return
		}

		lookupID, secret, ok := h.rememberFromCookie(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r, h.cfg.TrustProxy)
		ua := r.UserAgent()

		userID, valid, err := h.vault.Validate(ctx, lookupID, secret)
		if err != nil {
			h.log.Error("auth.remember.validate.fail", "err", err)
			writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
			return
		}
		if !valid {
			if err := h.vault.Revoke(ctx, lookupID); err != nil {
				h.log.Warn("auth.remember.revoke.fail", "err", err)
			}
			h.expireRememberCookie(w)
			h.auditRememberInvalid(ctx, ip, ua)
			next.ServeHTTP(w, r)
			return
		}

		if err := session.Login(ctx, h.sessions, userID); err != nil {
			h.log.Error("auth.remember.session.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "internal", "internal error")
			return
		}

		rotated := false
		if h.vault.Config().RotateOnUse {
			rotated = h.rotateRemember(ctx, w, userID, lookupID)
		}
		h.auditRememberSuccess(ctx, userID, ip, ua, rotated)

		next.ServeHTTP(w, r)
	})
}

// rotateRemember issues a replacement token, sets its cookie, then revokes
// the old row. On issue failure the old cookie stays valid.
func (h *Handler) rotateRemember(ctx context.Context, w http.ResponseWriter, userID, oldLookupID string) bool {
	issued, err := h.vault.Issue(ctx, userID)
	if err != nil {
		h.log.Warn("auth.remember.rotate.fail", "err", err)
		return false
	}
	h.setRememberCookie(w, issued)
	if err := h.vault.Revoke(ctx, oldLookupID); err != nil {
		h.log.Warn("auth.remember.revoke.fail", "err", err)
	}
	return true
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "fill in required fields")
		return
	}

	ctx := r.Context()
	u, err := h.users.CreateUser(ctx, identity.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		field, conflict := identity.ConflictField(err)
		switch {
		case conflict:
			writeError(w, http.StatusConflict, "conflict_"+field, conflictMessage(field))
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", invalidInputMessage(err))
		default:
			h.log.Error("auth.register.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "internal", "internal error")
		}
		return
	}

	if !h.startSession(ctx, w, u.ID, req.wantsRemember()) {
		return
	}
	h.auditRegister(ctx, u.ID, clientIP(r, h.cfg.TrustProxy), r.UserAgent())
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if userID := session.UserID(ctx, h.sessions); userID != "" {
		h.writeCurrentUser(w, r, userID)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username or password not provided")
		return
	}

	ip := clientIP(r, h.cfg.TrustProxy)
	ua := r.UserAgent()
	identifier := identity.NormalizeUsername(req.Username)

	u, err := h.authn.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if identity.IsInvalidCredentials(err) {
			h.auditLoginFailed(ctx, ip, ua, identifier, "invalid_credentials")
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "username or password incorrect")
			return
		}
		h.log.Error("auth.login.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	}

	if !h.startSession(ctx, w, u.ID, req.wantsRemember()) {
		return
	}
	h.auditLoginSuccess(ctx, u.ID, ip, ua, req.wantsRemember())
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

func (h *Handler) handleHello(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if session.UserID(r.Context(), h.sessions) == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.requireAuth(w, r)
	if !ok {
		return
	}
	h.writeCurrentUser(w, r, userID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if lookupID, _, ok := h.rememberFromCookie(r); ok {
		if err := h.vault.Revoke(ctx, lookupID); err != nil {
			h.log.Error("auth.logout.revoke.fail", "err", err)
			writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
			return
		}
	}
	h.expireRememberCookie(w)

	if err := session.Logout(ctx, h.sessions); err != nil {
		h.log.Error("auth.logout.session.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	h.auditLogout(ctx, userID, clientIP(r, h.cfg.TrustProxy), r.UserAgent())
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	n, err := h.vault.RevokeAll(ctx, userID)
	if err != nil {
		h.log.Error("auth.logout_all.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	}
	h.expireRememberCookie(w)

	if err := session.Logout(ctx, h.sessions); err != nil {
		h.log.Error("auth.logout_all.session.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	h.auditLogoutAll(ctx, userID, n, clientIP(r, h.cfg.TrustProxy), r.UserAgent())
	writeJSON(w, http.StatusOK, logoutAllResponse{Revoked: n})
}

// ---- helpers ----

// startSession binds the session to userID and, when asked, issues a
// remember token. It writes the error response itself and reports success.
func (h *Handler) startSession(ctx context.Context, w http.ResponseWriter, userID string, rememberMe bool) bool {
	if err := session.Login(ctx, h.sessions, userID); err != nil {
		h.log.Error("auth.session.renew.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return false
	}
	if !rememberMe {
		return true
	}

	issued, err := h.vault.Issue(ctx, userID)
	if err != nil {
		h.log.Error("auth.remember.issue.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return false
	}
	h.setRememberCookie(w, issued)
	return true
}

func (h *Handler) writeCurrentUser(w http.ResponseWriter, r *http.Request, userID string) {
	u, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.log.Error("auth.user.get.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := session.UserID(r.Context(), h.sessions)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not signed in")
		return "", false
	}
	return userID, true
}

func conflictMessage(field string) string {
	switch field {
	case "username":
		return "username is already registered"
	case "email":
		return "email is already registered"
	default:
		return "account already exists"
	}
}

func invalidInputMessage(err error) string {
	var oe identity.OpError
	if errors.As(err, &oe) && oe.Msg != "" {
		return oe.Msg
	}
	return "invalid request"
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for _, p := range parts {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}
