// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/mailer"
	"github.com/userhub/userhub/internal/metrics"
	"github.com/userhub/userhub/internal/model"
	"github.com/userhub/userhub/internal/repository"
)

// Service errors.
var (
	ErrUserNotFound = errors.New("user not found")
)

// Pagination bounds.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100

	minPasswordLength = 6
	maxPasswordLength = 128
)

// emailRegex accepts anything of the shape local@domain without
// whitespace. Deliverability is the confirmation mail's problem.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// ValidationError carries ordered, human-readable field messages.
type ValidationError struct {
	Details []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, ", ")
}

// UserRepo is the subset of the repository the service needs.
type UserRepo interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// PageMeta is the pagination metadata returned alongside collections.
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
}

// UserService handles user resource business logic.
type UserService struct {
	repo                UserRepo
	mailer              auth.MailPublisher
	metrics             metrics.Recorder
	logger              *slog.Logger
	bcryptCost          int
	requireConfirmation bool
}

// UserServiceConfig holds configuration for the UserService.
type UserServiceConfig struct {
	Repo                UserRepo
	Mailer              auth.MailPublisher
	Metrics             metrics.Recorder
	Logger              *slog.Logger
	BcryptCost          int
	RequireConfirmation bool
}

// NewUserService creates a new UserService.
func NewUserService(cfg UserServiceConfig) *UserService {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = auth.DefaultBcryptCost
	}
	return &UserService{
		repo:                cfg.Repo,
		mailer:              cfg.Mailer,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger,
		bcryptCost:          cfg.BcryptCost,
		requireConfirmation: cfg.RequireConfirmation,
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Email                string
	FirstName            string
	LastName             string
	Password             string
	PasswordConfirmation string
}

// UpdateUserInput defines a partial update. Nil fields are left
// untouched; only the permitted fields are representable at all.
type UpdateUserInput struct {
	Email                *string
	FirstName            *string
	LastName             *string
	Password             *string
	PasswordConfirmation *string
}

// List returns users ordered by creation time ascending, with
// pagination metadata. page defaults to 1, perPage to DefaultPerPage
// and is clamped to MaxPerPage.
func (s *UserService) List(ctx context.Context, page, perPage int) ([]*model.User, *PageMeta, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, nil, err
	}

	users, err := s.repo.ListUsers(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, nil, err
	}

	totalPages := int((count + int64(perPage) - 1) / int64(perPage))

	meta := &PageMeta{
		CurrentPage: page,
		PerPage:     perPage,
		TotalPages:  totalPages,
		TotalCount:  count,
	}

	return users, meta, nil
}

// Get returns a single user by id.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create validates, hashes the password and persists a new user.
// When confirmation is required, a confirmation token is generated and
// the confirmation mail handed to the delivery queue.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	email := model.NormalizeEmail(input.Email)

	details := validateEmail(email)
	details = append(details, validateNames(input.FirstName, input.LastName)...)
	details = append(details, validatePassword(input.Password, input.PasswordConfirmation, true)...)

	// Uniqueness is checked before the write so the message joins the
	// other field errors; the DB index still backs it under races.
	if email != "" {
		if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
			details = append(details, "Email has already been taken")
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
	}

	if len(details) > 0 {
		return nil, &ValidationError{Details: details}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:                uuid.New().String(),
		Email:             email,
		EncryptedPassword: hash,
		FirstName:         strings.TrimSpace(input.FirstName),
		LastName:          strings.TrimSpace(input.LastName),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if s.requireConfirmation {
		token := auth.NewFlowToken()
		user.ConfirmationToken = &token
		user.ConfirmationSentAt = &now
	} else {
		user.ConfirmedAt = &now
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, &ValidationError{Details: []string{"Email has already been taken"}}
		}
		return nil, err
	}

	if s.requireConfirmation && s.mailer != nil {
		// Fire-and-forget: a dropped mail job never fails the sign-up.
		_ = s.mailer.Publish(ctx, mailer.Job{
			Type:   mailer.JobConfirmation,
			UserID: user.ID,
			Email:  user.Email,
			Token:  *user.ConfirmationToken,
		})
	}

	s.metrics.IncUserCreated()
	s.logger.Info("user created", slog.String("user_id", user.ID))

	return user, nil
}

// Update applies a partial update of the permitted fields and
// revalidates the affected constraints.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var details []string

	if input.Email != nil {
		email := model.NormalizeEmail(*input.Email)
		details = append(details, validateEmail(email)...)

		if email != "" && email != user.Email {
			if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
				details = append(details, "Email has already been taken")
			} else if !errors.Is(err, repository.ErrUserNotFound) {
				return nil, err
			}
		}
		user.Email = email
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
		if user.FirstName == "" {
			details = append(details, "First name can't be blank")
		}
	}

	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
		if user.LastName == "" {
			details = append(details, "Last name can't be blank")
		}
	}

	if input.Password != nil {
		confirmation := ""
		if input.PasswordConfirmation != nil {
			confirmation = *input.PasswordConfirmation
		}
		details = append(details, validatePassword(*input.Password, confirmation, true)...)
	}

	if len(details) > 0 {
		return nil, &ValidationError{Details: details}
	}

	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.EncryptedPassword = hash
	}

	user.UpdatedAt = time.Now()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, &ValidationError{Details: []string{"Email has already been taken"}}
		}
		return nil, err
	}

	s.metrics.IncUserUpdated()
	s.logger.Info("user updated", slog.String("user_id", user.ID))

	return user, nil
}

// Delete hard-deletes the user. A second delete of the same id fails
// with ErrUserNotFound rather than silently succeeding.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.metrics.IncUserDeleted()
	s.logger.Info("user deleted", slog.String("user_id", id))

	return nil
}

// ValidatePassword exposes the password policy for flows that change
// a password outside Create/Update, like password recovery.
func ValidatePassword(password, confirmation string) []string {
	return validatePassword(password, confirmation, true)
}

// validateEmail returns field messages for the email constraints.
func validateEmail(email string) []string {
	var details []string
	if email == "" {
		details = append(details, "Email can't be blank")
	} else if !emailRegex.MatchString(email) {
		details = append(details, "Email is invalid")
	}
	return details
}

// validateNames returns field messages for the name constraints.
func validateNames(firstName, lastName string) []string {
	var details []string
	if strings.TrimSpace(firstName) == "" {
		details = append(details, "First name can't be blank")
	}
	if strings.TrimSpace(lastName) == "" {
		details = append(details, "Last name can't be blank")
	}
	return details
}

// validatePassword returns field messages for the password policy.
func validatePassword(password, confirmation string, required bool) []string {
	var details []string

	if password == "" {
		if required {
			details = append(details, "Password can't be blank")
		}
		return details
	}

	if len(password) < minPasswordLength {
		details = append(details, fmt.Sprintf("Password is too short (minimum is %d characters)", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		details = append(details, fmt.Sprintf("Password is too long (maximum is %d characters)", maxPasswordLength))
	}
	if confirmation != password {
		details = append(details, "Password confirmation doesn't match Password")
	}

	return details
}
