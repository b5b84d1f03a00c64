package repository

import (
	"context"
	"time"

	"github.com/mbevents/backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// SetResetToken overwrites any pending reset token on the user.
	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error

	// ConsumeResetToken atomically sets the new password hash and clears the
	// reset fields, but only if the stored token matches and has not expired.
	// Returns domain.ErrResetNotPending when no row qualifies.
	ConsumeResetToken(ctx context.Context, userID, token, newPasswordHash string) error

	// ClearExpiredResetTokens removes stale reset fields and reports how many
	// rows were touched.
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}
