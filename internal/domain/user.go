package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrResetNotPending    = errors.New("no valid password reset pending")
)

type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string

	// Both set while a password reset is pending, both nil otherwise.
	ResetToken       *string
	ResetTokenExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
