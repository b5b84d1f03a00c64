package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mbevents/backend/internal/domain"
	"github.com/mbevents/backend/internal/email"
	"github.com/mbevents/backend/internal/metrics"
	"github.com/mbevents/backend/internal/repository"
	"github.com/mbevents/backend/internal/token"
	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase struct {
	users       repository.UserRepository
	tokens      *token.Issuer
	mail        email.Enqueuer
	frontendURL string
}

func NewAuthUsecase(users repository.UserRepository, tokens *token.Issuer, mail email.Enqueuer, frontendURL string) *AuthUsecase {
	return &AuthUsecase{
		users:       users,
		tokens:      tokens,
		mail:        mail,
		frontendURL: frontendURL,
	}
}

// Register creates the user and queues a welcome email. The unique index on
// email is the only duplicate check; a violation surfaces as ErrEmailTaken.
func (u *AuthUsecase) Register(ctx context.Context, emailAddr, fullName, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := u.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		FullName:     fullName,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()

	// Queued after the insert commits; delivery failure cannot undo it.
	subject, body := email.Welcome(created.FullName, u.frontendURL+"/login")
	u.mail.Enqueue(email.Message{To: created.Email, Subject: subject, HTML: body})

	return created, nil
}

// Login checks the password against the stored bcrypt hash and returns a
// signed session token plus the user.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (string, *domain.User, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
			return "", nil, err
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	signed, err := u.tokens.IssueSession(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issue session: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return signed, user, nil
}

// ForgotPassword issues a 15-minute reset token, stores it with its absolute
// expiry on the user row (overwriting any pending one), and queues the reset
// email. The raw token travels only in that email.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.PasswordResetsTotal.WithLabelValues("forgot", "not_found").Inc()
			return err
		}
		return fmt.Errorf("find user: %w", err)
	}

	raw, err := u.tokens.IssueReset(user.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	expiresAt := time.Now().Add(token.ResetTTL)
	if err := u.users.SetResetToken(ctx, user.ID, raw, expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	metrics.PasswordResetsTotal.WithLabelValues("forgot", "ok").Inc()

	resetURL := u.frontendURL + "/reset-password?token=" + raw
	subject, body := email.PasswordReset(user.FullName, resetURL)
	u.mail.Enqueue(email.Message{To: user.Email, Subject: subject, HTML: body})

	return nil
}

// ResetPassword verifies the token's signature and expiry before touching the
// store, then atomically swaps the password hash and clears the reset fields.
func (u *AuthUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	claims, err := u.tokens.VerifyReset(rawToken)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("reset", "bad_token").Inc()
		return domain.ErrTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := u.users.ConsumeResetToken(ctx, claims.UserID, rawToken, string(hash)); err != nil {
		if errors.Is(err, domain.ErrResetNotPending) {
			metrics.PasswordResetsTotal.WithLabelValues("reset", "not_pending").Inc()
			return err
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	metrics.PasswordResetsTotal.WithLabelValues("reset", "ok").Inc()
	return nil
}
