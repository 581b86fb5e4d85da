package ports

import (
	"context"
	"errors"
	"time"

	"quantumdaily/internal/domain"
)

// ErrNotFound reports a missing record from any store.
var ErrNotFound = errors.New("not found")

// ItemSource pulls fresh candidate items from all upstream providers.
// A partial or empty result is valid; provider failures are absorbed.
type ItemSource interface {
	FetchAll(ctx context.Context, since time.Time) ([]domain.Item, error)
}

// Summarizer produces summary text for a single candidate item. Failures
// are per-item; the caller decides the fallback.
type Summarizer interface {
	Summarize(ctx context.Context, item domain.Item) (domain.Summary, error)
}

// Extractor fetches a URL and returns its main text and a title guess.
type Extractor interface {
	Extract(ctx context.Context, url string) (text string, title string, err error)
}

// PreferenceStore owns the canonical preference record. Load creates the
// record with defaults when absent; callers serialize read-modify-write.
type PreferenceStore interface {
	LoadPreferences(ctx context.Context) (domain.Preferences, error)
	SavePreferences(ctx context.Context, prefs domain.Preferences) error
}

// FeedbackStore appends immutable feedback events for audit.
type FeedbackStore interface {
	AppendFeedback(ctx context.Context, event domain.FeedbackEvent) error
}

// ArticleStore persists selected items as article rows, assigning identity.
type ArticleStore interface {
	SaveArticle(ctx context.Context, item domain.Item) (int64, error)
}

// IssueStore persists one issue snapshot per calendar date; saving the
// same date again overwrites the previous snapshot.
type IssueStore interface {
	SaveIssue(ctx context.Context, issue domain.DailyIssue) error
	LoadIssue(ctx context.Context, date string) (domain.DailyIssue, error)
}

// Sender delivers a rendered issue (or any notification) by email.
type Sender interface {
	Send(ctx context.Context, subject, html, text string) error
}

// Scheduler controls when the daily run executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
