package httptransport_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mbevents/backend/internal/domain"
	"github.com/mbevents/backend/internal/token"
	httptransport "github.com/mbevents/backend/internal/transport/http"
	"github.com/mbevents/backend/internal/transport/http/handler"
	"github.com/mbevents/backend/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testKey = "router-test-secret-at-least-32-ch!!"

type stubAuthUsecase struct{}

func (stubAuthUsecase) Register(_ context.Context, email, fullName, _ string) (*domain.User, error) {
	return &domain.User{ID: "user-1", Email: email, FullName: fullName}, nil
}

func (stubAuthUsecase) Login(_ context.Context, _, _ string) (string, *domain.User, error) {
	return "", nil, domain.ErrUserNotFound
}

func (stubAuthUsecase) ForgotPassword(_ context.Context, _ string) error { return nil }

func (stubAuthUsecase) ResetPassword(_ context.Context, _, _ string) error { return nil }

type stubEventUsecase struct{}

func (stubEventUsecase) Create(_ context.Context, input usecase.CreateEventInput) (*domain.Event, error) {
	return &domain.Event{ID: "event-1", HostID: input.HostID, Title: input.Title}, nil
}

func (stubEventUsecase) Upcoming(_ context.Context) ([]*domain.Event, error) { return nil, nil }

func (stubEventUsecase) Free(_ context.Context) ([]*domain.Event, error) { return nil, nil }

func (stubEventUsecase) AttachPoster(_ context.Context, _, _, _, _ string, _ io.Reader) (string, error) {
	return "", domain.ErrEventNotFound
}

func newRouter() *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return httptransport.NewRouter(
		logger,
		handler.NewAuthHandler(stubAuthUsecase{}, logger),
		handler.NewEventHandler(stubEventUsecase{}, logger),
		token.NewIssuer([]byte(testKey)),
	)
}

func TestRouter_Banner(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	newRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "MB Events") {
		t.Errorf("body = %s, want banner", w.Body.String())
	}
}

func TestRouter_UnmatchedRoute_Returns404(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
	newRouter().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Route not found") {
		t.Errorf("body = %s, want route-not-found error", w.Body.String())
	}
}

func TestRouter_CreateEvent_RequiresAuth(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	newRouter().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRouter_ListingsArePublic(t *testing.T) {
	for _, path := range []string{"/api/v1/events/upcoming", "/api/v1/events/free"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, w.Code)
		}
	}
}

func TestRouter_CreateEvent_WithToken(t *testing.T) {
	raw, err := token.NewIssuer([]byte(testKey)).IssueSession("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events",
		strings.NewReader(`{"title":"Meetup","location":"Lagos","startsAt":"2030-01-01T18:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+raw)
	newRouter().ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	newRouter().ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}
