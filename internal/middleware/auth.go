package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/userhub/userhub/internal/auth"
)

// SessionCookie is the cookie carrying the session token when the
// client opts out of the Authorization header.
const SessionCookie = "access_token"

// SessionValidator resolves a session token to an authenticated session.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*auth.Session, error)
}

// AuthConfig holds configuration for the session middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier SessionValidator
}

// Auth returns a middleware that authenticates API requests.
// It extracts the session token from the Authorization header or the
// session cookie, validates it, and injects the session into the
// request context. On failure the request is short-circuited with a
// 401 and never reaches the handlers.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			session, err := cfg.Verifier.Validate(r.Context(), token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", authFailureReason(err)),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken extracts the session token from the request.
// Supports "Authorization: Bearer <token>" and the session cookie.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}

	return ""
}

// authFailureReason maps validation errors to log labels.
func authFailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired_token"
	case errors.Is(err, auth.ErrTokenRevoked):
		return "revoked_token"
	case errors.Is(err, auth.ErrTokenMalformed):
		return "malformed_token"
	default:
		return "validation_error"
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Couldn't find an active session."}`))
}
