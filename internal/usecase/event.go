package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/mbevents/backend/internal/domain"
	"github.com/mbevents/backend/internal/metrics"
	"github.com/mbevents/backend/internal/repository"
	"github.com/mbevents/backend/internal/storage"
)

type EventUsecase struct {
	events  repository.EventRepository
	posters storage.Uploader
}

func NewEventUsecase(events repository.EventRepository, posters storage.Uploader) *EventUsecase {
	return &EventUsecase{events: events, posters: posters}
}

type CreateEventInput struct {
	HostID      string
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	PriceCents  int64
}

func (u *EventUsecase) Create(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	event := &domain.Event{
		ID:          uuid.NewString(),
		HostID:      input.HostID,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartsAt:    input.StartsAt,
		PriceCents:  input.PriceCents,
		IsFree:      input.PriceCents == 0,
	}

	created, err := u.events.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	metrics.EventsCreatedTotal.Inc()
	return created, nil
}

func (u *EventUsecase) Upcoming(ctx context.Context) ([]*domain.Event, error) {
	events, err := u.events.Upcoming(ctx)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

func (u *EventUsecase) Free(ctx context.Context) ([]*domain.Event, error) {
	events, err := u.events.Free(ctx)
	if err != nil {
		return nil, fmt.Errorf("list free events: %w", err)
	}
	return events, nil
}

// AttachPoster uploads the image and records its URL on the event. Only the
// host may attach; anyone else sees ErrEventNotFound.
func (u *EventUsecase) AttachPoster(ctx context.Context, eventID, hostID, filename, contentType string, body io.Reader) (string, error) {
	key := "posters/" + eventID + "/" + uuid.NewString() + path.Ext(filename)

	url, err := u.posters.Upload(ctx, key, contentType, body)
	if err != nil {
		metrics.PosterUploadsTotal.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("upload poster: %w", err)
	}

	if err := u.events.SetPosterURL(ctx, eventID, hostID, url); err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			metrics.PosterUploadsTotal.WithLabelValues("not_found").Inc()
			return "", err
		}
		return "", fmt.Errorf("save poster url: %w", err)
	}

	metrics.PosterUploadsTotal.WithLabelValues("ok").Inc()
	return url, nil
}
