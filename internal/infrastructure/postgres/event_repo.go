package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mbevents/backend/internal/domain"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, host_id, title, description, location, starts_at, price_cents, is_free, poster_url, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	query := `
		INSERT INTO events (id, host_id, title, description, location, starts_at, price_cents, is_free)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + eventColumns

	row := r.pool.QueryRow(ctx, query,
		event.ID,
		event.HostID,
		event.Title,
		event.Description,
		event.Location,
		event.StartsAt,
		event.PriceCents,
		event.IsFree,
	)
	return scanEvent(row)
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

func (r *EventRepository) Upcoming(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE starts_at > NOW()
		ORDER BY starts_at ASC`

	return r.list(ctx, query)
}

func (r *EventRepository) Free(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE is_free
		ORDER BY starts_at ASC`

	return r.list(ctx, query)
}

func (r *EventRepository) SetPosterURL(ctx context.Context, eventID, hostID, url string) error {
	query := `
		UPDATE events
		SET    poster_url = $3,
		       updated_at = NOW()
		WHERE  id = $1 AND host_id = $2`

	tag, err := r.pool.Exec(ctx, query, eventID, hostID, url)
	if err != nil {
		return fmt.Errorf("set poster url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.HostID, &e.Title, &e.Description, &e.Location,
		&e.StartsAt, &e.PriceCents, &e.IsFree, &e.PosterURL,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}
