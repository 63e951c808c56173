package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/rideshare-scheduler/internal/application"
	"github.com/example/rideshare-scheduler/internal/config"
	"github.com/example/rideshare-scheduler/internal/logging"
	"github.com/example/rideshare-scheduler/internal/persistence/sqlite"
	"github.com/example/rideshare-scheduler/internal/scheduler"
)

func main() {
	// Missing .env is fine; the environment may be set by the deployment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	patternRepo := sqlite.NewPatternRepository(pool)
	occurrenceRepo := sqlite.NewOccurrenceRepository(pool)

	materializer := application.NewMaterializerServiceWithLogger(patternRepo, occurrenceRepo, uuid.NewString, time.Now, logger)
	extender := scheduler.NewExtender(patternRepo, materializer, cfg.HorizonDays, logger)

	runner := cron.New()
	_, err = runner.AddFunc(cfg.ExtendSpec, func() {
		passCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if err := extender.Run(passCtx); err != nil {
			logger.Error("horizon extension pass failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("failed to schedule horizon extension", "error", err, "spec", cfg.ExtendSpec)
		os.Exit(1)
	}

	// Catch up immediately so a restart does not wait for the next tick.
	if err := extender.Run(ctx); err != nil {
		logger.Error("initial horizon extension pass failed", "error", err)
	}

	runner.Start()
	logger.Info("ride scheduler running", "horizon_days", cfg.HorizonDays, "extend_spec", cfg.ExtendSpec)

	<-ctx.Done()

	stopCtx := runner.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
		logger.Warn("timed out waiting for running extension pass")
	}
	logger.Info("ride scheduler stopped")
}
