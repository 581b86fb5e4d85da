package main

import (
	"context"
	"os"

	"quantumdaily/internal/app"
	"quantumdaily/internal/config"
	"quantumdaily/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("application stopped with error", "error", err)
		os.Exit(1)
	}
}
