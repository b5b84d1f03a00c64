package domain

import (
	"errors"
	"time"
)

var ErrEventNotFound = errors.New("event not found")

type Event struct {
	ID          string
	HostID      string
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	PriceCents  int64
	IsFree      bool
	PosterURL   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
