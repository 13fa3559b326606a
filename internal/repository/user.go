package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/userhub/userhub/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
)

// userColumns is the canonical column list used by every user query.
const userColumns = `
	id, email, encrypted_password, first_name, last_name,
	confirmed_at, confirmation_token, confirmation_sent_at,
	reset_password_token, reset_password_sent_at, remember_created_at,
	sign_in_count, current_sign_in_at, last_sign_in_at,
	current_sign_in_ip, last_sign_in_ip,
	created_at, updated_at
`

// CreateUser inserts a new user into the database.
// Returns ErrEmailTaken when the unique email index is violated.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, encrypted_password, first_name, last_name,
			confirmed_at, confirmation_token, confirmation_sent_at,
			sign_in_count, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.EncryptedPassword,
		user.FirstName,
		user.LastName,
		user.ConfirmedAt,
		user.ConfirmationToken,
		user.ConfirmationSentAt,
		user.SignInCount,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
// Emails are stored lower-cased, so the lookup is case-insensitive
// as long as callers normalize the same way.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// ListUsers returns users ordered by creation time ascending.
func (r *Repository) ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at ASC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// CountUsers returns the total number of users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// UpdateUser persists changes to email, name fields and password hash.
// Returns ErrUserNotFound if the row no longer exists and ErrEmailTaken
// on a unique email conflict.
func (r *Repository) UpdateUser(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $2,
		    encrypted_password = $3,
		    first_name = $4,
		    last_name = $5,
		    updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.EncryptedPassword,
		user.FirstName,
		user.LastName,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteUser hard-deletes the user row.
// Deleting an already-deleted id returns ErrUserNotFound.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// RecordSignIn updates the sign-in audit trail for a successful
// authentication: increments the counter and rotates current→last
// timestamp and IP. Last writer wins on concurrent sign-ins.
func (r *Repository) RecordSignIn(ctx context.Context, id string, at time.Time, ip string) error {
	query := `
		UPDATE users
		SET sign_in_count = sign_in_count + 1,
		    last_sign_in_at = current_sign_in_at,
		    last_sign_in_ip = current_sign_in_ip,
		    current_sign_in_at = $2,
		    current_sign_in_ip = $3,
		    updated_at = $2
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, at, ip)
	if err != nil {
		return fmt.Errorf("failed to record sign-in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetUserByConfirmationToken retrieves a user with a pending
// confirmation matching the given token.
func (r *Repository) GetUserByConfirmationToken(ctx context.Context, token string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE confirmation_token = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by confirmation token: %w", err)
	}

	return user, nil
}

// MarkConfirmed completes the confirmation flow: sets confirmed_at and
// clears the pending token.
func (r *Repository) MarkConfirmed(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE users
		SET confirmed_at = $2,
		    confirmation_token = NULL,
		    updated_at = $2
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark user confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetResetPasswordToken stores a recovery token and its issuance time.
func (r *Repository) SetResetPasswordToken(ctx context.Context, id, token string, at time.Time) error {
	query := `
		UPDATE users
		SET reset_password_token = $2,
		    reset_password_sent_at = $3,
		    updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, token, at)
	if err != nil {
		return fmt.Errorf("failed to set reset password token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetUserByResetPasswordToken retrieves a user with a pending password
// reset matching the given token.
func (r *Repository) GetUserByResetPasswordToken(ctx context.Context, token string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_password_token = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}

	return user, nil
}

// UpdatePassword replaces the credential hash and clears any pending
// recovery token in one statement.
func (r *Repository) UpdatePassword(ctx context.Context, id, encryptedPassword string, at time.Time) error {
	query := `
		UPDATE users
		SET encrypted_password = $2,
		    reset_password_token = NULL,
		    reset_password_sent_at = NULL,
		    updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, encryptedPassword, at)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// scanUser scans a user row in userColumns order.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.EncryptedPassword,
		&user.FirstName,
		&user.LastName,
		&user.ConfirmedAt,
		&user.ConfirmationToken,
		&user.ConfirmationSentAt,
		&user.ResetPasswordToken,
		&user.ResetPasswordSentAt,
		&user.RememberCreatedAt,
		&user.SignInCount,
		&user.CurrentSignInAt,
		&user.LastSignInAt,
		&user.CurrentSignInIP,
		&user.LastSignInIP,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	// PostgreSQL error code 23505 is unique_violation
	return err != nil && (contains(err.Error(), "23505") || contains(err.Error(), "unique"))
}

// contains checks if a string contains a substring.
func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
