package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"quantumdaily/internal/domain"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestLoadPreferencesCreatesDefaults(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()

	prefs, err := repo.LoadPreferences(ctx)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}

	if prefs.IndustryWeight != 0.7 || prefs.TechWeight != 0.3 {
		t.Fatalf("unexpected default weights: %+v", prefs)
	}
	if prefs.SendHourLocal != 8 {
		t.Fatalf("unexpected default send hour: %d", prefs.SendHourLocal)
	}
	if prefs.SourceBias == nil || prefs.TopicBias == nil {
		t.Fatalf("expected initialized bias maps")
	}

	// second load must return the same singleton, not recreate it
	again, err := repo.LoadPreferences(ctx)
	if err != nil {
		t.Fatalf("second LoadPreferences: %v", err)
	}
	if again.IndustryWeight != prefs.IndustryWeight {
		t.Fatalf("singleton mismatch: %+v vs %+v", again, prefs)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()

	prefs := domain.Preferences{
		IndustryWeight: 0.55,
		TechWeight:     0.45,
		Email:          "reader@example.com",
		SendHourLocal:  6,
		SourceBias:     domain.BiasMap{"HPCwire": 0.25, "IonQ": -0.5},
		TopicBias:      domain.BiasMap{"tech": 0.1},
	}

	if err := repo.SavePreferences(ctx, prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	got, err := repo.LoadPreferences(ctx)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}

	if got.IndustryWeight != 0.55 || got.TechWeight != 0.45 {
		t.Fatalf("weights not persisted: %+v", got)
	}
	if got.Email != "reader@example.com" || got.SendHourLocal != 6 {
		t.Fatalf("delivery fields not persisted: %+v", got)
	}
	if got.SourceBias["HPCwire"] != 0.25 || got.SourceBias["IonQ"] != -0.5 {
		t.Fatalf("source bias not persisted: %+v", got.SourceBias)
	}
	if got.TopicBias["tech"] != 0.1 {
		t.Fatalf("topic bias not persisted: %+v", got.TopicBias)
	}
}

func TestAppendFeedback(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()

	err := repo.AppendFeedback(ctx, domain.FeedbackEvent{
		ArticleID: 7,
		Signal:    domain.SignalUp,
		Aspect:    "source:HPCwire",
	})
	if err != nil {
		t.Fatalf("AppendFeedback: %v", err)
	}

	// events are append-only; a duplicate append is a new row, not an error
	if err := repo.AppendFeedback(ctx, domain.FeedbackEvent{
		ArticleID: 7,
		Signal:    domain.SignalUp,
		Aspect:    "source:HPCwire",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("second AppendFeedback: %v", err)
	}
}

func TestSaveArticleAssignsIDs(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	published := time.Date(2026, time.February, 2, 9, 0, 0, 0, time.UTC)

	first, err := repo.SaveArticle(ctx, domain.Item{
		URL:         "https://example.com/1",
		Title:       "one",
		PublishedAt: &published,
		Category:    domain.CategoryIndustry,
		Score:       0.9,
	})
	if err != nil {
		t.Fatalf("SaveArticle: %v", err)
	}

	second, err := repo.SaveArticle(ctx, domain.Item{URL: "https://example.com/2", Title: "two"})
	if err != nil {
		t.Fatalf("SaveArticle: %v", err)
	}

	if first <= 0 || second != first+1 {
		t.Fatalf("unexpected ids: %d, %d", first, second)
	}
}

func TestIssueUpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()

	issue := domain.DailyIssue{
		Date: "2026-02-02",
		Items: []domain.Item{
			{ID: 1, URL: "https://example.com/1", Title: "old title", Category: domain.CategoryTech, Score: 0.4},
		},
	}
	if err := repo.SaveIssue(ctx, issue); err != nil {
		t.Fatalf("SaveIssue: %v", err)
	}

	issue.Items[0].Title = "regenerated title"
	if err := repo.SaveIssue(ctx, issue); err != nil {
		t.Fatalf("SaveIssue overwrite: %v", err)
	}

	got, err := repo.LoadIssue(ctx, "2026-02-02")
	if err != nil {
		t.Fatalf("LoadIssue: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Title != "regenerated title" {
		t.Fatalf("overwrite not applied: %+v", got)
	}
}

func TestLoadIssueNotFound(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)

	_, err := repo.LoadIssue(context.Background(), "1999-12-31")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
