package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"quantumdaily/internal/domain"
	"quantumdaily/internal/ports"
	"quantumdaily/internal/ranker"
)

// Feedback records reader signals and folds them into preferences.
type Feedback struct {
	events       ports.FeedbackStore
	prefs        ports.PreferenceStore
	learningRate float64
	logger       *slog.Logger

	// serializes the read-modify-write on the preference record
	mu sync.Mutex
}

// NewFeedback builds the feedback usecase. learningRate <= 0 selects the
// default.
func NewFeedback(events ports.FeedbackStore, prefs ports.PreferenceStore, learningRate float64, logger *slog.Logger) *Feedback {
	if learningRate <= 0 {
		learningRate = ranker.DefaultLearningRate
	}
	return &Feedback{
		events:       events,
		prefs:        prefs,
		learningRate: learningRate,
		logger:       logger,
	}
}

// Submit appends the events to the audit log and applies them to the
// stored preferences, returning the updated record.
func (f *Feedback) Submit(ctx context.Context, events []domain.FeedbackEvent) (domain.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, event := range events {
		if err := f.events.AppendFeedback(ctx, event); err != nil {
			return domain.Preferences{}, fmt.Errorf("append feedback: %w", err)
		}
	}

	prefs, err := f.prefs.LoadPreferences(ctx)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	updated := ranker.ApplyFeedback(&prefs, events, f.learningRate)
	if err := f.prefs.SavePreferences(ctx, *updated); err != nil {
		return domain.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}

	f.logger.Info("feedback applied",
		"events", len(events),
		"industry_weight", updated.IndustryWeight,
		"tech_weight", updated.TechWeight)
	return *updated, nil
}
