package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/handler/dto"
	"github.com/userhub/userhub/internal/middleware"
	"github.com/userhub/userhub/internal/model"
	"github.com/userhub/userhub/internal/repository"
	"github.com/userhub/userhub/internal/service"
)

// Authenticator is the verifier surface the session endpoints need.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password, ip string) (*model.User, string, error)
	Revoke(ctx context.Context, token string) error
	Confirm(ctx context.Context, token string) (*model.User, error)
	StartPasswordReset(ctx context.Context, email string) error
	FinishPasswordReset(ctx context.Context, token, password string) error
}

// SessionHandler handles authentication endpoints: sign-in, sign-out,
// sign-up and the confirmation and password recovery flows.
type SessionHandler struct {
	verifier Authenticator
	users    UserProvider
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(verifier Authenticator, users UserProvider, tokenTTL time.Duration, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		verifier: verifier,
		users:    users,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// SignIn handles POST /api/v1/auth/sign_in.
// On success the token is dispatched in the Authorization response
// header and as a session cookie.
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	user, token, err := h.verifier.Authenticate(r.Context(), req.Email, req.Password, r.RemoteAddr)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		case errors.Is(err, auth.ErrUnconfirmed):
			writeError(w, http.StatusUnauthorized, "You have to confirm your email address before continuing.")
		default:
			h.logger.Error("sign_in_error", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	userData := dto.ToUserData(user)
	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Logged in successfully.",
		Data:    &userData,
	})
}

// SignOut handles DELETE /api/v1/auth/sign_out.
// The session middleware has already validated the token; revoking it
// here invalidates it for every subsequent request.
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)

	if err := h.verifier.Revoke(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			writeError(w, http.StatusUnauthorized, "Couldn't find an active session.")
			return
		}
		h.logger.Error("sign_out_error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Expire the session cookie alongside the token.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Logged out successfully.",
	})
}

// SignUp handles POST /api/v1/auth (self-service registration).
func (h *SessionHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	user, err := h.users.Create(r.Context(), service.CreateUserInput{
		Email:                req.Email,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		var validation *service.ValidationError
		if errors.As(err, &validation) {
			writeValidationError(w, validation.Details)
			return
		}
		h.logger.Error("sign_up_error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("user_signed_up", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Confirm handles GET /api/v1/auth/confirmation?token=...
// completing the email confirmation flow.
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	user, err := h.verifier.Confirm(r.Context(), token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		h.logger.Error("confirmation_error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	userData := dto.ToUserData(user)
	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Email confirmed successfully.",
		Data:    &userData,
	})
}

// StartPasswordReset handles POST /api/v1/auth/password.
// Responds identically for known and unknown emails.
func (h *SessionHandler) StartPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.StartPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	if err := h.verifier.StartPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("password_reset_error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Reset instructions sent if the email exists.",
	})
}

// FinishPasswordReset handles PATCH /api/v1/auth/password.
func (h *SessionHandler) FinishPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.FinishPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	if details := service.ValidatePassword(req.Password, req.PasswordConfirmation); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	err := h.verifier.FinishPasswordReset(r.Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			writeValidationError(w, []string{"Reset password token is invalid"})
		case errors.Is(err, auth.ErrResetTokenExpired):
			writeValidationError(w, []string{"Reset password token has expired, please request a new one"})
		default:
			h.logger.Error("password_reset_error", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Password updated successfully.",
	})
}
