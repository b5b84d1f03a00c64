// seed inserts a demo user and a batch of events into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mbevents/backend/internal/domain"
	"github.com/mbevents/backend/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "secret1"
)

type eventSpec struct {
	title    string
	location string
	inDays   int
	cents    int64
}

var events = []eventSpec{
	// Free, upcoming
	{"Community meetup", "Lagos", 2, 0},
	{"Open mic night", "Lagos", 5, 0},
	{"Beach cleanup", "Lekki", 7, 0},
	{"Tech talks", "Abuja", 10, 0},

	// Paid, upcoming
	{"Afrobeats concert", "Lagos", 3, 15000_00},
	{"Food festival", "Ibadan", 6, 2500_00},
	{"Art exhibition", "Abuja", 14, 5000_00},
	{"Startup pitch night", "Lagos", 21, 1000_00},

	// Past, must not appear in /events/upcoming
	{"Last month's gala", "Lagos", -30, 20000_00},
	{"Yesterday's run", "Lekki", -1, 0},
}

func main() {
	ctx := context.Background()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, databaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := postgres.NewUserRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash: %v", err)
	}

	host, err := users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        seedEmail,
		FullName:     "Seed Host",
		PasswordHash: string(hash),
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		host, err = users.FindByEmail(ctx, seedEmail)
	}
	if err != nil {
		log.Fatalf("seed user: %v", err)
	}

	for i, spec := range events {
		_, err := eventRepo.Create(ctx, &domain.Event{
			ID:          uuid.NewString(),
			HostID:      host.ID,
			Title:       spec.title,
			Description: fmt.Sprintf("Seed event #%d", i+1),
			Location:    spec.location,
			StartsAt:    time.Now().AddDate(0, 0, spec.inDays),
			PriceCents:  spec.cents,
			IsFree:      spec.cents == 0,
		})
		if err != nil {
			log.Fatalf("seed event %q: %v", spec.title, err)
		}
	}

	fmt.Printf("seeded %s with %d events (login: %s / %s)\n", seedEmail, len(events), seedEmail, seedPassword)
}
