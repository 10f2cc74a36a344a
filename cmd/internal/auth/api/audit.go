package authapi

import (
	"context"
	"log/slog"
	"net"
	"strings"
)

// Audit events are structured log records; there is no audit table.

func (h *Handler) auditRegister(ctx context.Context, userID string, ip net.IP, ua string) {
	h.audit(ctx, slog.LevelInfo, "auth.register", ip, ua, "user_id", userID)
}

func (h *Handler) auditLoginFailed(ctx context.Context, ip net.IP, ua string, identifier string, reason string) {
	h.audit(ctx, slog.LevelWarn, "auth.login.failed", ip, ua,
		"identifier", identifier,
		"reason", reason,
	)
}

func (h *Handler) auditLoginSuccess(ctx context.Context, userID string, ip net.IP, ua string, rememberMe bool) {
	h.audit(ctx, slog.LevelInfo, "auth.login.success", ip, ua,
		"user_id", userID,
		"remember_me", rememberMe,
	)
}

func (h *Handler) auditRememberSuccess(ctx context.Context, userID string, ip net.IP, ua string, rotated bool) {
	h.audit(ctx, slog.LevelInfo, "auth.remember.success", ip, ua,
		"user_id", userID,
		"rotated", rotated,
	)
}

func (h *Handler) auditRememberInvalid(ctx context.Context, ip net.IP, ua string) {
	h.audit(ctx, slog.LevelWarn, "auth.remember.invalid", ip, ua)
}

func (h *Handler) auditLogout(ctx context.Context, userID string, ip net.IP, ua string) {
	h.audit(ctx, slog.LevelInfo, "auth.logout", ip, ua, "user_id", userID)
}

func (h *Handler) auditLogoutAll(ctx context.Context, userID string, revoked int64, ip net.IP, ua string) {
	h.audit(ctx, slog.LevelInfo, "auth.logout_all", ip, ua,
		"user_id", userID,
		"revoked", revoked,
	)
}

func (h *Handler) audit(ctx context.Context, level slog.Level, action string, ip net.IP, ua string, args ...any) {
	if h == nil || h.log == nil {
		return
	}
	attrs := make([]any, 0, len(args)+4)
	if ip != nil {
		attrs = append(attrs, "ip", ip.String())
	}
	if v := strings.TrimSpace(ua); v != "" {
		attrs = append(attrs, "user_agent", v)
	}
	attrs = append(attrs, args...)
	h.log.Log(ctx, level, action, attrs...)
}
