package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/mbevents/backend/config"
	"github.com/mbevents/backend/internal/email"
	"github.com/mbevents/backend/internal/health"
	"github.com/mbevents/backend/internal/infrastructure/postgres"
	ctxlog "github.com/mbevents/backend/internal/log"
	"github.com/mbevents/backend/internal/maintenance"
	"github.com/mbevents/backend/internal/metrics"
	"github.com/mbevents/backend/internal/storage"
	"github.com/mbevents/backend/internal/token"
	httptransport "github.com/mbevents/backend/internal/transport/http"
	"github.com/mbevents/backend/internal/transport/http/handler"
	"github.com/mbevents/backend/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	userRepo := postgres.NewUserRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)

	issuer := token.NewIssuer([]byte(cfg.JWTSecret))

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	dispatcher := email.NewDispatcher(sender, logger, cfg.MailQueueSize)
	go dispatcher.Run(ctx)

	uploader, err := newUploader(ctx, cfg, logger)
	if err != nil {
		stop()
		log.Fatalf("uploader: %v", err)
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, issuer, dispatcher, cfg.FrontendURL)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	eventUsecase := usecase.NewEventUsecase(eventRepo, uploader)
	eventHandler := handler.NewEventHandler(eventUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	sweeper := maintenance.NewSweeper(userRepo, logger)
	if err := sweeper.Start(cfg.ResetSweepSpec); err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}
	defer sweeper.Stop()

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, eventHandler, issuer),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Uploader, error) {
	if cfg.PosterBucket == "" {
		return storage.NewLogUploader(logger), nil
	}
	return storage.NewS3Uploader(ctx, storage.S3Config{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Bucket:          cfg.PosterBucket,
	})
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
