package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/libs/logging"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/app"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(logging.Options{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // best-effort flush

	if cfg.UsingDevSecret {
		logger.Warn("JWT_SECRET not set, using development secret")
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	logger.Info("voltstart api starting",
		zap.String("env", cfg.Env),
		zap.String("addr", cfg.HTTPAddress()),
	)
	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("application stopped with error", zap.Error(err))
	}
}
