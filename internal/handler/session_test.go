package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/handler/dto"
	"github.com/userhub/userhub/internal/middleware"
	"github.com/userhub/userhub/internal/model"
	"github.com/userhub/userhub/internal/repository"
)

type fakeAuthenticator struct {
	user  *model.User
	token string
	err   error

	revokedToken string
	resetEmail   string
	resetToken   string
	resetPass    string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, _, _, _ string) (*model.User, string, error) {
	return f.user, f.token, f.err
}

func (f *fakeAuthenticator) Revoke(_ context.Context, token string) error {
	f.revokedToken = token
	return f.err
}

func (f *fakeAuthenticator) Confirm(_ context.Context, _ string) (*model.User, error) {
	return f.user, f.err
}

func (f *fakeAuthenticator) StartPasswordReset(_ context.Context, email string) error {
	f.resetEmail = email
	return f.err
}

func (f *fakeAuthenticator) FinishPasswordReset(_ context.Context, token, password string) error {
	f.resetToken, f.resetPass = token, password
	return f.err
}

func newSessionHandler(verifier *fakeAuthenticator, users UserProvider) *SessionHandler {
	return NewSessionHandler(verifier, users, 24*time.Hour, discardLogger())
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestSessionHandler_SignIn(t *testing.T) {
	user := sampleUser()
	h := newSessionHandler(&fakeAuthenticator{user: user, token: "jwt-token"}, nil)

	payload := `{"email":"jane@example.com","password":"password123"}`
	rec := httptest.NewRecorder()
	h.SignIn(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign_in", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if got := rec.Header().Get("Authorization"); got != "Bearer jwt-token" {
		t.Errorf("Authorization header = %q, want Bearer jwt-token", got)
	}

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value != "jwt-token" {
		t.Errorf("cookie value = %q, want jwt-token", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if cookie.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Errorf("cookie max-age = %d, want token TTL in seconds", cookie.MaxAge)
	}

	var body dto.MessageResponse
	decodeJSON(t, rec, &body)
	if body.Message != "Logged in successfully." {
		t.Errorf("message = %q, want %q", body.Message, "Logged in successfully.")
	}
	if body.Data == nil || body.Data.ID != user.ID {
		t.Errorf("data = %+v, want user %q", body.Data, user.ID)
	}
}

func TestSessionHandler_SignInFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"bad credentials", auth.ErrInvalidCredentials, "Invalid email or password."},
		{"unconfirmed", auth.ErrUnconfirmed, "You have to confirm your email address before continuing."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newSessionHandler(&fakeAuthenticator{err: tt.err}, nil)

			payload := `{"email":"jane@example.com","password":"wrong"}`
			rec := httptest.NewRecorder()
			h.SignIn(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign_in", strings.NewReader(payload)))

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if sessionCookie(rec) != nil {
				t.Error("session cookie set on failed sign-in")
			}

			var body dto.ErrorResponse
			decodeJSON(t, rec, &body)
			if body.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", body.Error, tt.wantMsg)
			}
		})
	}
}

func TestSessionHandler_SignInBadJSON(t *testing.T) {
	h := newSessionHandler(&fakeAuthenticator{}, nil)

	rec := httptest.NewRecorder()
	h.SignIn(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign_in", strings.NewReader("{")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSessionHandler_SignOut(t *testing.T) {
	fake := &fakeAuthenticator{}
	h := newSessionHandler(fake, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth/sign_out", nil)
	req.Header.Set("Authorization", "Bearer jwt-token")
	rec := httptest.NewRecorder()
	h.SignOut(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fake.revokedToken != "jwt-token" {
		t.Errorf("revoked token = %q, want jwt-token", fake.revokedToken)
	}

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("expiring session cookie not set")
	}
	if cookie.MaxAge != -1 {
		t.Errorf("cookie max-age = %d, want -1", cookie.MaxAge)
	}

	var body dto.MessageResponse
	decodeJSON(t, rec, &body)
	if body.Message != "Logged out successfully." {
		t.Errorf("message = %q, want %q", body.Message, "Logged out successfully.")
	}
}

func TestSessionHandler_SignOutNoSession(t *testing.T) {
	h := newSessionHandler(&fakeAuthenticator{err: auth.ErrTokenNotFound}, nil)

	rec := httptest.NewRecorder()
	h.SignOut(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/auth/sign_out", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var body dto.ErrorResponse
	decodeJSON(t, rec, &body)
	if body.Error != "Couldn't find an active session." {
		t.Errorf("error = %q, want %q", body.Error, "Couldn't find an active session.")
	}
}

func TestSessionHandler_SignUp(t *testing.T) {
	h := newSessionHandler(&fakeAuthenticator{}, &fakeUserProvider{user: sampleUser()})

	payload := `{"email":"jane@example.com","first_name":"Jane","last_name":"Doe","password":"password123","password_confirmation":"password123"}`
	rec := httptest.NewRecorder()
	h.SignUp(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth", strings.NewReader(payload)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var body dto.UserResponse
	decodeJSON(t, rec, &body)
	if body.Data.Attributes.Email != "jane@example.com" {
		t.Errorf("email = %q, want jane@example.com", body.Data.Attributes.Email)
	}
}

func TestSessionHandler_Confirm(t *testing.T) {
	user := sampleUser()
	h := newSessionHandler(&fakeAuthenticator{user: user}, nil)

	rec := httptest.NewRecorder()
	h.Confirm(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/confirmation?token=abc", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body dto.MessageResponse
	decodeJSON(t, rec, &body)
	if body.Message != "Email confirmed successfully." {
		t.Errorf("message = %q, want %q", body.Message, "Email confirmed successfully.")
	}
}

func TestSessionHandler_ConfirmMissingToken(t *testing.T) {
	h := newSessionHandler(&fakeAuthenticator{}, nil)

	rec := httptest.NewRecorder()
	h.Confirm(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/confirmation", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSessionHandler_ConfirmUnknownToken(t *testing.T) {
	h := newSessionHandler(&fakeAuthenticator{err: repository.ErrUserNotFound}, nil)

	rec := httptest.NewRecorder()
	h.Confirm(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/confirmation?token=stale", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSessionHandler_StartPasswordReset(t *testing.T) {
	fake := &fakeAuthenticator{}
	h := newSessionHandler(fake, nil)

	payload := `{"email":"jane@example.com"}`
	rec := httptest.NewRecorder()
	h.StartPasswordReset(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/password", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fake.resetEmail != "jane@example.com" {
		t.Errorf("reset email = %q, want jane@example.com", fake.resetEmail)
	}

	var body dto.MessageResponse
	decodeJSON(t, rec, &body)
	if body.Message != "Reset instructions sent if the email exists." {
		t.Errorf("message = %q, want the neutral reset message", body.Message)
	}
}

func TestSessionHandler_FinishPasswordReset(t *testing.T) {
	fake := &fakeAuthenticator{}
	h := newSessionHandler(fake, nil)

	payload := `{"token":"reset-token","password":"newpassword","password_confirmation":"newpassword"}`
	rec := httptest.NewRecorder()
	h.FinishPasswordReset(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/auth/password", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fake.resetToken != "reset-token" || fake.resetPass != "newpassword" {
		t.Errorf("reset called with token=%q password=%q", fake.resetToken, fake.resetPass)
	}
}

func TestSessionHandler_FinishPasswordResetFailures(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			"weak password",
			`{"token":"t","password":"abc","password_confirmation":"abc"}`,
			nil,
			http.StatusUnprocessableEntity,
			"Password is too short (minimum is 6 characters)",
		},
		{
			"unknown token",
			`{"token":"t","password":"newpassword","password_confirmation":"newpassword"}`,
			repository.ErrUserNotFound,
			http.StatusUnprocessableEntity,
			"Reset password token is invalid",
		},
		{
			"expired token",
			`{"token":"t","password":"newpassword","password_confirmation":"newpassword"}`,
			auth.ErrResetTokenExpired,
			http.StatusUnprocessableEntity,
			"Reset password token has expired, please request a new one",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newSessionHandler(&fakeAuthenticator{err: tt.err}, nil)

			rec := httptest.NewRecorder()
			h.FinishPasswordReset(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/auth/password", strings.NewReader(tt.payload)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body dto.ErrorResponse
			decodeJSON(t, rec, &body)
			if len(body.Details) != 1 || body.Details[0] != tt.wantDetail {
				t.Errorf("details = %v, want [%q]", body.Details, tt.wantDetail)
			}
		})
	}
}
