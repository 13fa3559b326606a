package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/userhub/userhub/internal/auth"
)

type fakeValidator struct {
	session *auth.Session
	err     error
	token   string
}

func (f *fakeValidator) Validate(_ context.Context, token string) (*auth.Session, error) {
	f.token = token
	return f.session, f.err
}

func newAuthMiddleware(v SessionValidator) func(http.Handler) http.Handler {
	return Auth(AuthConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Verifier: v,
	})
}

func TestAuth_ValidBearerToken(t *testing.T) {
	validator := &fakeValidator{session: &auth.Session{UserID: "u1", TokenID: "t1"}}

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer jwt-token")
	rec := httptest.NewRecorder()
	newAuthMiddleware(validator)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if validator.token != "jwt-token" {
		t.Errorf("validated token = %q, want jwt-token", validator.token)
	}
	if gotUserID != "u1" {
		t.Errorf("user id in context = %q, want u1", gotUserID)
	}
}

func TestAuth_ValidCookieToken(t *testing.T) {
	validator := &fakeValidator{session: &auth.Session{UserID: "u1", TokenID: "t1"}}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-token"})
	rec := httptest.NewRecorder()
	newAuthMiddleware(validator)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if validator.token != "cookie-token" {
		t.Errorf("validated token = %q, want cookie-token", validator.token)
	}
}

func TestAuth_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	validator := &fakeValidator{session: &auth.Session{UserID: "u1"}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-token"})
	rec := httptest.NewRecorder()
	newAuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if validator.token != "header-token" {
		t.Errorf("validated token = %q, want header-token", validator.token)
	}
}

func TestAuth_Failures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(r *http.Request)
		validator *fakeValidator
	}{
		{"missing token", func(r *http.Request) {}, &fakeValidator{}},
		{
			"expired token",
			func(r *http.Request) { r.Header.Set("Authorization", "Bearer old") },
			&fakeValidator{err: auth.ErrTokenExpired},
		},
		{
			"revoked token",
			func(r *http.Request) { r.Header.Set("Authorization", "Bearer revoked") },
			&fakeValidator{err: auth.ErrTokenRevoked},
		},
		{
			"malformed token",
			func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") },
			&fakeValidator{err: auth.ErrTokenMalformed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			newAuthMiddleware(tt.validator)(next).ServeHTTP(rec, req)

			if reached {
				t.Error("handler reached despite auth failure")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			// All failures share one body so callers cannot probe token state.
			if got := rec.Body.String(); got != `{"error":"Couldn't find an active session."}` {
				t.Errorf("body = %q", got)
			}
		})
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"no credentials", func(r *http.Request) {}, ""},
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, "abc"},
		{"non-bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, ""},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "xyz"}) }, "xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			if got := ExtractToken(req); got != tt.want {
				t.Errorf("ExtractToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
