package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the context key for storing the Session.
	sessionContextKey contextKey = "session"
)

// Session is the per-request authentication context attached by the
// session middleware after a token has been validated.
type Session struct {
	UserID  string
	TokenID string
}

// ContextWithSession adds the Session to the context.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves the Session from the context.
// Returns nil if not present.
func SessionFromContext(ctx context.Context) *Session {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return session
}

// UserIDFromContext is a convenience function to get the caller's user id.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	session := SessionFromContext(ctx)
	if session == nil {
		return ""
	}
	return session.UserID
}
