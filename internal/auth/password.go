// Package auth provides credential verification and session token management.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the production hashing cost.
// Tests use bcrypt.MinCost via configuration to stay fast.
const DefaultBcryptCost = 12

// HashPassword creates a bcrypt hash of the given password.
// The plaintext is never persisted or logged.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("generate password hash: %w", err)
	}

	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored hash.
// Returns ErrInvalidCredentials on mismatch.
func CheckPassword(password, encodedHash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
