package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mbevents/backend/internal/domain"
	"github.com/mbevents/backend/internal/usecase"
)

const maxPosterBytes = 5 << 20

type eventUsecaser interface {
	Create(ctx context.Context, input usecase.CreateEventInput) (*domain.Event, error)
	Upcoming(ctx context.Context) ([]*domain.Event, error)
	Free(ctx context.Context) ([]*domain.Event, error)
	AttachPoster(ctx context.Context, eventID, hostID, filename, contentType string, body io.Reader) (string, error)
}

type EventHandler struct {
	eventUsecase eventUsecaser
	logger       *slog.Logger
}

func NewEventHandler(eventUsecase eventUsecaser, logger *slog.Logger) *EventHandler {
	return &EventHandler{eventUsecase: eventUsecase, logger: logger.With("component", "event_handler")}
}

type createEventRequest struct {
	Title       string    `json:"title"       binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"    binding:"required"`
	StartsAt    time.Time `json:"startsAt"    binding:"required"`
	PriceCents  int64     `json:"priceCents"  binding:"min=0"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	HostID      string    `json:"hostId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
	PriceCents  int64     `json:"priceCents"`
	IsFree      bool      `json:"isFree"`
	PosterURL   *string   `json:"posterUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		HostID:      e.HostID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		PriceCents:  e.PriceCents,
		IsFree:      e.IsFree,
		PosterURL:   e.PosterURL,
		CreatedAt:   e.CreatedAt,
	}
}

// POST /api/v1/events (auth required)
func (h *EventHandler) Create(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	event, err := h.eventUsecase.Create(c.Request.Context(), usecase.CreateEventInput{
		HostID:      c.GetString("userID"),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		PriceCents:  req.PriceCents,
	})
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "create event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "event": toEventResponse(event)})
}

// GET /api/v1/events/upcoming
func (h *EventHandler) Upcoming(c *gin.Context) {
	h.list(c, h.eventUsecase.Upcoming)
}

// GET /api/v1/events/free
func (h *EventHandler) Free(c *gin.Context) {
	h.list(c, h.eventUsecase.Free)
}

func (h *EventHandler) list(c *gin.Context, fetch func(ctx context.Context) ([]*domain.Event, error)) {
	events, err := fetch(c.Request.Context())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "list events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errInternalServer})
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "events": out})
}

// POST /api/v1/events/:id/poster (auth required, multipart field "poster")
func (h *EventHandler) AttachPoster(c *gin.Context) {
	fileHeader, err := c.FormFile("poster")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "poster file is required"})
		return
	}
	if fileHeader.Size > maxPosterBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "poster exceeds 5MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "open poster upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errInternalServer})
		return
	}
	defer file.Close()

	url, err := h.eventUsecase.AttachPoster(
		c.Request.Context(),
		c.Param("id"),
		c.GetString("userID"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": errEventNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "attach poster", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "posterUrl": url})
}
