// Package maintenance runs periodic cleanup jobs.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/mbevents/backend/internal/metrics"
	"github.com/robfig/cron/v3"
)

// resetTokenStore is the repository slice the sweeper needs.
type resetTokenStore interface {
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

// Sweeper clears expired password-reset tokens on a cron schedule.
// Expired tokens are never honorable (the reset UPDATE checks expiry),
// the sweep just keeps stale fields out of the table.
type Sweeper struct {
	users  resetTokenStore
	logger *slog.Logger
	cron   *cron.Cron
}

func NewSweeper(users resetTokenStore, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		users:  users,
		logger: logger.With("component", "reset_sweeper"),
		cron:   cron.New(),
	}
}

// Start schedules the sweep with a standard 5-field cron spec.
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.Sweep(context.Background()) }); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("reset sweeper started", "spec", spec)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("reset sweeper stopped")
}

// Sweep clears expired tokens once.
func (s *Sweeper) Sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := s.users.ClearExpiredResetTokens(sweepCtx)
	if err != nil {
		s.logger.Error("clear expired reset tokens", "error", err)
		return
	}
	if n > 0 {
		metrics.ResetTokensSweptTotal.Add(float64(n))
		s.logger.Info("cleared expired reset tokens", "count", n)
	}
}
