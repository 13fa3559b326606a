package auth

import "errors"

// Authentication and session errors.
var (
	// ErrInvalidCredentials covers both unknown email and password
	// mismatch so responses cannot be used for account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnconfirmed indicates the account has not completed the email
	// confirmation flow.
	ErrUnconfirmed = errors.New("email address not confirmed")

	// ErrTokenMalformed indicates the token signature or structure is invalid.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenExpired indicates the token is past its TTL.
	ErrTokenExpired = errors.New("token is expired")

	// ErrTokenRevoked indicates the token id is in the revocation set.
	ErrTokenRevoked = errors.New("token has been revoked")

	// ErrTokenNotFound indicates a revocation was requested for a token
	// that was never issued or is already revoked.
	ErrTokenNotFound = errors.New("token not found")

	// ErrResetTokenExpired indicates the password recovery window has passed.
	ErrResetTokenExpired = errors.New("reset password token is expired")
)
