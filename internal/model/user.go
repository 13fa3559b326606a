// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// User is the sole domain entity: an account that can authenticate
// and be managed through the users API.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`

	// EncryptedPassword is the bcrypt hash of the password.
	// Never serialized to API responses.
	EncryptedPassword string `json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Confirmation flow state.
	ConfirmedAt        *time.Time `json:"-"`
	ConfirmationToken  *string    `json:"-"`
	ConfirmationSentAt *time.Time `json:"-"`

	// Password recovery state.
	ResetPasswordToken  *string    `json:"-"`
	ResetPasswordSentAt *time.Time `json:"-"`

	// Persistent-login marker.
	RememberCreatedAt *time.Time `json:"-"`

	// Sign-in audit trail.
	SignInCount     int        `json:"-"`
	CurrentSignInAt *time.Time `json:"-"`
	LastSignInAt    *time.Time `json:"-"`
	CurrentSignInIP *string    `json:"-"`
	LastSignInIP    *string    `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeEmail lower-cases and trims an email address. All lookups
// and writes go through this so email uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName returns "first last" with surrounding whitespace trimmed.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName returns the full name, falling back to the email
// address when both name fields are blank.
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Email
}

// Confirmed reports whether the account has completed the email
// confirmation flow.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}
