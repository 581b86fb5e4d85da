package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quantumdaily/internal/config"
	"quantumdaily/internal/httpapi"
	"quantumdaily/internal/infrastructure/email"
	"quantumdaily/internal/infrastructure/extract"
	"quantumdaily/internal/infrastructure/llm"
	"quantumdaily/internal/infrastructure/scheduler"
	"quantumdaily/internal/infrastructure/sources"
	"quantumdaily/internal/infrastructure/storage"
	"quantumdaily/internal/logging"
	"quantumdaily/internal/ports"
	"quantumdaily/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	repo      *storage.Repository
	server    *httpapi.Server
	scheduled *usecase.ScheduledRun
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	repo, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	aggregator := sources.NewAggregator(cfg.Ingest.Topic, cfg.Ingest.MaxItemsPerProvider,
		baseLogger.With("component", "sources"))
	aggregator.Register(sources.NewGoogleNewsProvider("en-US", "US"))
	aggregator.Register(sources.NewStaticRSSProvider(cfg.Ingest.StaticFeeds,
		baseLogger.With("component", "sources.static")))
	if cfg.Ingest.NewsAPIKey != "" {
		aggregator.Register(sources.NewNewsAPIProvider(cfg.Ingest.NewsAPIKey))
	}

	var summarizer ports.Summarizer
	if client := llm.NewSummarizer(cfg.OpenAI); client.Configured() {
		summarizer = client
	} else {
		baseLogger.Warn("summarizer not configured, using truncation fallback")
	}

	extractor := extract.New(nil, baseLogger.With("component", "extract"))
	sender := email.NewSender(cfg.Email, baseLogger.With("component", "email"))

	daily := usecase.NewDaily(
		aggregator,
		extractor,
		summarizer,
		repo, repo, repo,
		sender,
		usecase.DailyConfig{
			SinceHours: cfg.Ingest.SinceHours,
			TopN:       cfg.Ranking.TopN,
			PDFDir:     cfg.Export.PDFDir,
		},
		baseLogger.With("component", "daily"),
	)
	feedback := usecase.NewFeedback(repo, repo, cfg.Ranking.LearningRate,
		baseLogger.With("component", "feedback"))
	prefs := usecase.NewPreferences(repo)

	// the stored send hour wins over the config default; changes made over
	// the API take effect on the next restart
	sendHour := cfg.Scheduler.DefaultSendHour
	if stored, err := repo.LoadPreferences(context.Background()); err == nil {
		if stored.SendHourLocal >= 0 && stored.SendHourLocal <= 23 {
			sendHour = stored.SendHourLocal
		}
	}

	cronScheduler := scheduler.New(sendHour, cfg.Scheduler.Location(),
		baseLogger.With("component", "scheduler"))
	scheduled := usecase.NewScheduledRun(cronScheduler, daily,
		baseLogger.With("component", "scheduled_run"))

	server := httpapi.NewServer(cfg.HTTP.Addr, daily, feedback, prefs,
		cfg.HTTP.AdminAPIKey, baseLogger.With("component", "http"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		repo:      repo,
		server:    server,
		scheduled: scheduled,
	}, nil
}

// Run starts the scheduler and the HTTP listener, then blocks until a
// termination signal arrives.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.scheduled.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown incomplete", "error", err)
	}
	if err := a.scheduled.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop incomplete", "error", err)
	}
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("storage close failed", "error", err)
	}
	return nil
}
