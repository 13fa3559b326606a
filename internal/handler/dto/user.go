// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/userhub/userhub/internal/model"
)

// SignInRequest represents the request body for signing in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest represents the request body for sign-up and for
// creating a user through the users resource.
type CreateUserRequest struct {
	Email                string `json:"email"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// UpdateUserRequest represents the request body for updating a user.
// Absent fields are left untouched.
type UpdateUserRequest struct {
	Email                *string `json:"email,omitempty"`
	FirstName            *string `json:"first_name,omitempty"`
	LastName             *string `json:"last_name,omitempty"`
	Password             *string `json:"password,omitempty"`
	PasswordConfirmation *string `json:"password_confirmation,omitempty"`
}

// StartPasswordResetRequest asks for reset instructions to be mailed.
type StartPasswordResetRequest struct {
	Email string `json:"email"`
}

// FinishPasswordResetRequest exchanges a recovery token for a new password.
type FinishPasswordResetRequest struct {
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// UserAttributes is the serialized attribute bag for a user.
// Credential and token columns are never part of it.
type UserAttributes struct {
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserData is the canonical single-resource shape.
type UserData struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes UserAttributes `json:"attributes"`
}

// UserResponse is the success envelope for a single user.
type UserResponse struct {
	Data UserData `json:"data"`
}

// PaginationMeta accompanies collection responses.
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
}

// UserListResponse is the success envelope for a user collection.
type UserListResponse struct {
	Data []UserData      `json:"data"`
	Meta *PaginationMeta `json:"meta,omitempty"`
}

// MessageResponse carries a human-readable outcome message, optionally
// with the affected user (sign-in, confirmation).
type MessageResponse struct {
	Message string    `json:"message"`
	Data    *UserData `json:"data,omitempty"`
}

// ErrorResponse represents an API error. Details is populated only for
// multi-field validation failures.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// ToUserData converts a User model to its response shape.
func ToUserData(user *model.User) UserData {
	return UserData{
		ID:   user.ID,
		Type: "user",
		Attributes: UserAttributes{
			Email:       user.Email,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			FullName:    user.FullName(),
			DisplayName: user.DisplayName(),
			CreatedAt:   user.CreatedAt,
			UpdatedAt:   user.UpdatedAt,
		},
	}
}

// ToUserResponse wraps a single user in the success envelope.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{Data: ToUserData(user)}
}

// ToUserListResponse wraps a user collection and pagination metadata.
func ToUserListResponse(users []*model.User, meta *PaginationMeta) *UserListResponse {
	data := make([]UserData, len(users))
	for i, user := range users {
		data[i] = ToUserData(user)
	}
	return &UserListResponse{Data: data, Meta: meta}
}
