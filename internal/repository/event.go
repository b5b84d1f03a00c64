package repository

import (
	"context"

	"github.com/mbevents/backend/internal/domain"
)

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	Upcoming(ctx context.Context) ([]*domain.Event, error)
	Free(ctx context.Context) ([]*domain.Event, error)

	// SetPosterURL updates the poster of an event owned by hostID.
	// Returns domain.ErrEventNotFound when the event does not exist or
	// belongs to another host.
	SetPosterURL(ctx context.Context, eventID, hostID, url string) error
}
