package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/handler/dto"
	"github.com/userhub/userhub/internal/model"
	"github.com/userhub/userhub/internal/service"
)

// UserProvider is the service surface the user endpoints need.
type UserProvider interface {
	List(ctx context.Context, page, perPage int) ([]*model.User, *service.PageMeta, error)
	Get(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, input service.CreateUserInput) (*model.User, error)
	Update(ctx context.Context, id string, input service.UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler handles HTTP requests for the users resource.
type UserHandler struct {
	svc    UserProvider
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserProvider, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if p := query.Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	perPage := 0
	if pp := query.Get("per_page"); pp != "" {
		if parsed, err := strconv.Atoi(pp); err == nil && parsed > 0 {
			perPage = parsed
		}
	}

	users, meta, err := h.svc.List(r.Context(), page, perPage)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	response := dto.ToUserListResponse(users, &dto.PaginationMeta{
		CurrentPage: meta.CurrentPage,
		PerPage:     meta.PerPage,
		TotalPages:  meta.TotalPages,
		TotalCount:  meta.TotalCount,
	})
	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	user, err := h.svc.Create(r.Context(), service.CreateUserInput{
		Email:                req.Email,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_created",
		"user_id", user.ID,
		"created_by", auth.UserIDFromContext(r.Context()),
	)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Update handles PATCH /api/v1/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	user, err := h.svc.Update(r.Context(), id, service.UpdateUserInput{
		Email:                req.Email,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_updated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /api/v1/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me. The caller's identity comes from the
// session context, no id lookup involved.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Get(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// handleServiceError maps service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *service.ValidationError

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.As(err, &validation):
		writeValidationError(w, validation.Details)
	default:
		h.logger.Error("internal_error",
			"error", err,
			"path", r.URL.Path,
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
