package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/userhub/userhub/internal/mailer"
	"github.com/userhub/userhub/internal/metrics"
	"github.com/userhub/userhub/internal/model"
	"github.com/userhub/userhub/internal/repository"
)

// DefaultResetWindow is how long a password recovery token stays valid.
const DefaultResetWindow = 6 * time.Hour

// UserStore is the subset of the repository the verifier needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	RecordSignIn(ctx context.Context, id string, at time.Time, ip string) error
	GetUserByConfirmationToken(ctx context.Context, token string) (*model.User, error)
	MarkConfirmed(ctx context.Context, id string, at time.Time) error
	SetResetPasswordToken(ctx context.Context, id, token string, at time.Time) error
	GetUserByResetPasswordToken(ctx context.Context, token string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, encryptedPassword string, at time.Time) error
}

// RevocationSet holds token ids invalidated before natural expiry.
type RevocationSet interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MailPublisher hands mail jobs to the external delivery queue.
type MailPublisher interface {
	Publish(ctx context.Context, job mailer.Job) error
}

// VerifierConfig holds configuration for the Verifier.
type VerifierConfig struct {
	Store               UserStore
	Revocations         RevocationSet
	Tokens              *TokenService
	Mailer              MailPublisher
	Metrics             metrics.Recorder
	Logger              *slog.Logger
	BcryptCost          int
	RequireConfirmation bool
	ResetWindow         time.Duration
}

// Verifier validates credentials and manages the session token
// lifecycle: issuance, validation, revocation, plus the confirmation
// and password recovery flows.
type Verifier struct {
	store               UserStore
	revocations         RevocationSet
	tokens              *TokenService
	mailer              MailPublisher
	metrics             metrics.Recorder
	logger              *slog.Logger
	bcryptCost          int
	requireConfirmation bool
	resetWindow         time.Duration
}

// NewVerifier creates a Verifier.
func NewVerifier(cfg VerifierConfig) *Verifier {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.ResetWindow <= 0 {
		cfg.ResetWindow = DefaultResetWindow
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultBcryptCost
	}
	return &Verifier{
		store:               cfg.Store,
		revocations:         cfg.Revocations,
		tokens:              cfg.Tokens,
		mailer:              cfg.Mailer,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger,
		bcryptCost:          cfg.BcryptCost,
		requireConfirmation: cfg.RequireConfirmation,
		resetWindow:         cfg.ResetWindow,
	}
}

// Authenticate validates an email/password pair and issues a session
// token. Returns ErrInvalidCredentials for both unknown email and
// password mismatch, and ErrUnconfirmed when confirmation is required
// but absent. On success the sign-in audit trail is updated.
func (v *Verifier) Authenticate(ctx context.Context, email, password, ip string) (*model.User, string, error) {
	user, err := v.store.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			v.metrics.IncSignInFailure("credentials")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	start := time.Now()
	err = CheckPassword(password, user.EncryptedPassword)
	v.metrics.ObservePasswordHashDuration(time.Since(start))
	if err != nil {
		v.metrics.IncSignInFailure("credentials")
		return nil, "", ErrInvalidCredentials
	}

	if v.requireConfirmation && !user.Confirmed() {
		v.metrics.IncSignInFailure("unconfirmed")
		return nil, "", ErrUnconfirmed
	}

	token, claims, err := v.tokens.Mint(user.ID)
	if err != nil {
		return nil, "", err
	}

	// Audit bookkeeping is best-effort; a failed update must not
	// invalidate an otherwise successful sign-in.
	now := time.Now()
	if err := v.store.RecordSignIn(ctx, user.ID, now, ip); err != nil {
		v.logger.Warn("failed to record sign-in audit",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	} else {
		user.SignInCount++
		user.LastSignInAt = user.CurrentSignInAt
		user.LastSignInIP = user.CurrentSignInIP
		user.CurrentSignInAt = &now
		if ip != "" {
			user.CurrentSignInIP = &ip
		}
	}

	v.metrics.IncSignInSuccess()
	v.logger.Info("sign-in successful",
		slog.String("user_id", user.ID),
		slog.String("token_id", claims.ID),
	)

	return user, token, nil
}

// Validate resolves a token to a session. Fails with ErrTokenExpired
// past the TTL, ErrTokenRevoked when the token id is in the revocation
// set, and ErrTokenMalformed for structural or signature problems. The
// referenced user must still exist.
func (v *Verifier) Validate(ctx context.Context, token string) (*Session, error) {
	claims, err := v.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := v.revocations.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	// Deleting a user cascades into invalidating outstanding tokens.
	if _, err := v.store.GetUserByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}

	return &Session{UserID: claims.Subject, TokenID: claims.ID}, nil
}

// Revoke adds the token id to the revocation set so subsequent
// validation fails. Returns ErrTokenNotFound for tokens that were
// never issued, already expired, or already revoked.
func (v *Verifier) Revoke(ctx context.Context, token string) error {
	claims, err := v.tokens.Parse(token)
	if err != nil {
		return ErrTokenNotFound
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	added, err := v.revocations.RevokeToken(ctx, claims.ID, ttl)
	if err != nil {
		return err
	}
	if !added {
		return ErrTokenNotFound
	}

	v.metrics.IncTokenRevoked()
	v.logger.Info("token revoked",
		slog.String("user_id", claims.Subject),
		slog.String("token_id", claims.ID),
	)

	return nil
}

// Confirm completes the email confirmation flow for the given token.
func (v *Verifier) Confirm(ctx context.Context, token string) (*model.User, error) {
	user, err := v.store.GetUserByConfirmationToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := v.store.MarkConfirmed(ctx, user.ID, now); err != nil {
		return nil, err
	}

	user.ConfirmedAt = &now
	user.ConfirmationToken = nil

	v.logger.Info("user confirmed", slog.String("user_id", user.ID))

	return user, nil
}

// StartPasswordReset issues a recovery token and hands the reset mail
// to the delivery queue. Unknown emails are silently ignored so the
// endpoint cannot be used for account enumeration.
func (v *Verifier) StartPasswordReset(ctx context.Context, email string) error {
	user, err := v.store.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token := NewFlowToken()
	now := time.Now()
	if err := v.store.SetResetPasswordToken(ctx, user.ID, token, now); err != nil {
		return err
	}

	if v.mailer != nil {
		_ = v.mailer.Publish(ctx, mailer.Job{
			Type:   mailer.JobPasswordReset,
			UserID: user.ID,
			Email:  user.Email,
			Token:  token,
		})
	}

	v.logger.Info("password reset started", slog.String("user_id", user.ID))

	return nil
}

// FinishPasswordReset exchanges a valid recovery token for a new
// password. The caller validates the password policy first; this only
// checks the token and window before rehashing.
func (v *Verifier) FinishPasswordReset(ctx context.Context, token, password string) error {
	user, err := v.store.GetUserByResetPasswordToken(ctx, token)
	if err != nil {
		return err
	}

	if user.ResetPasswordSentAt == nil || time.Since(*user.ResetPasswordSentAt) > v.resetWindow {
		return ErrResetTokenExpired
	}

	start := time.Now()
	hash, err := HashPassword(password, v.bcryptCost)
	v.metrics.ObservePasswordHashDuration(time.Since(start))
	if err != nil {
		return err
	}

	if err := v.store.UpdatePassword(ctx, user.ID, hash, time.Now()); err != nil {
		return err
	}

	v.logger.Info("password reset finished", slog.String("user_id", user.ID))

	return nil
}
