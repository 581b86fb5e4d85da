package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"quantumdaily/internal/domain"
	"quantumdaily/internal/infrastructure/llm"
	"quantumdaily/internal/infrastructure/render"
	"quantumdaily/internal/ports"
	"quantumdaily/internal/ranker"
)

// DailyConfig tunes one issue run.
type DailyConfig struct {
	SinceHours int
	TopN       int
	PDFDir     string
}

// Daily builds, persists, and delivers the issue for one calendar date.
//
// Stages after ranking degrade per item: a failed extraction or summary
// falls back instead of aborting the run. Only preference load and the
// issue snapshot write are fatal.
type Daily struct {
	source     ports.ItemSource
	extractor  ports.Extractor
	summarizer ports.Summarizer
	prefStore  ports.PreferenceStore
	articles   ports.ArticleStore
	issues     ports.IssueStore
	sender     ports.Sender
	cfg        DailyConfig
	logger     *slog.Logger
}

// NewDaily wires the run pipeline. summarizer may be nil; every item then
// gets the truncation fallback.
func NewDaily(
	source ports.ItemSource,
	extractor ports.Extractor,
	summarizer ports.Summarizer,
	prefStore ports.PreferenceStore,
	articles ports.ArticleStore,
	issues ports.IssueStore,
	sender ports.Sender,
	cfg DailyConfig,
	logger *slog.Logger,
) *Daily {
	return &Daily{
		source:     source,
		extractor:  extractor,
		summarizer: summarizer,
		prefStore:  prefStore,
		articles:   articles,
		issues:     issues,
		sender:     sender,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes the full pipeline and returns the persisted issue.
func (d *Daily) Run(ctx context.Context, now time.Time) (domain.DailyIssue, error) {
	prefs, err := d.prefStore.LoadPreferences(ctx)
	if err != nil {
		return domain.DailyIssue{}, fmt.Errorf("load preferences: %w", err)
	}

	since := now.Add(-time.Duration(d.cfg.SinceHours) * time.Hour)
	items, err := d.source.FetchAll(ctx, since)
	if err != nil {
		d.logger.Warn("ingest incomplete", "error", err)
	}
	d.logger.Info("ingested candidates", "count", len(items))

	selected := ranker.Rank(items, prefs, d.cfg.TopN, now)

	for i := range selected {
		d.enrich(ctx, &selected[i])

		id, err := d.articles.SaveArticle(ctx, selected[i])
		if err != nil {
			d.logger.Warn("save article failed", "url", selected[i].URL, "error", err)
			continue
		}
		selected[i].ID = id
	}

	issue := domain.DailyIssue{
		Date:  now.Format("2006-01-02"),
		Items: stripContent(selected),
	}
	if err := d.issues.SaveIssue(ctx, issue); err != nil {
		return domain.DailyIssue{}, fmt.Errorf("save issue: %w", err)
	}

	d.deliver(ctx, issue)

	d.logger.Info("daily run complete", "date", issue.Date, "items", len(issue.Items))
	return issue, nil
}

// IssueFor returns the snapshot for a date, running the pipeline when the
// snapshot is missing or regen is set.
func (d *Daily) IssueFor(ctx context.Context, now time.Time, regen bool) (domain.DailyIssue, error) {
	date := now.Format("2006-01-02")
	if !regen {
		issue, err := d.issues.LoadIssue(ctx, date)
		if err == nil {
			return issue, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return domain.DailyIssue{}, fmt.Errorf("load issue: %w", err)
		}
	}
	return d.Run(ctx, now)
}

// Deliver re-sends today's issue, rebuilding only when no snapshot exists.
// Run delivers on its own, so the rebuild path does not send twice.
func (d *Daily) Deliver(ctx context.Context, now time.Time) (domain.DailyIssue, error) {
	issue, err := d.issues.LoadIssue(ctx, now.Format("2006-01-02"))
	if errors.Is(err, ports.ErrNotFound) {
		return d.Run(ctx, now)
	}
	if err != nil {
		return domain.DailyIssue{}, fmt.Errorf("load issue: %w", err)
	}
	d.deliver(ctx, issue)
	return issue, nil
}

// enrich fills in content and summary fields, degrading per item.
func (d *Daily) enrich(ctx context.Context, item *domain.Item) {
	if item.Content == "" && d.extractor != nil {
		text, title, err := d.extractor.Extract(ctx, item.URL)
		if err != nil {
			d.logger.Warn("extract failed", "url", item.URL, "error", err)
		} else {
			item.Content = text
			if item.Title == "" {
				item.Title = title
			}
		}
	}

	summary := llm.FallbackSummary(*item)
	if d.summarizer != nil {
		s, err := d.summarizer.Summarize(ctx, *item)
		if err != nil {
			d.logger.Warn("summarize failed, using fallback", "url", item.URL, "error", err)
		} else {
			summary = s
		}
	}
	item.PlainSummary = summary.Plain
	item.TLDRBullets = summary.Bullets
	if item.Summary == "" {
		item.Summary = summary.Plain
	}
}

// deliver renders and ships the issue. Failures here are logged, not fatal:
// the snapshot is already persisted.
func (d *Daily) deliver(ctx context.Context, issue domain.DailyIssue) {
	html, err := render.IssueHTML(issue)
	if err != nil {
		d.logger.Warn("render html failed", "error", err)
		return
	}
	text := render.IssueText(issue)

	if d.cfg.PDFDir != "" {
		if err := d.exportPDF(issue); err != nil {
			d.logger.Warn("pdf export failed", "error", err)
		}
	}

	if d.sender != nil {
		subject := fmt.Sprintf("Quantum Daily — %s", issue.Date)
		if err := d.sender.Send(ctx, subject, html, text); err != nil {
			d.logger.Warn("email delivery failed", "error", err)
		}
	}
}

func (d *Daily) exportPDF(issue domain.DailyIssue) error {
	pdf, err := render.IssuePDF(issue)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.cfg.PDFDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(d.cfg.PDFDir, fmt.Sprintf("issue-%s.pdf", issue.Date))
	return os.WriteFile(path, pdf, 0o644)
}

// stripContent drops raw article bodies from the persisted snapshot.
func stripContent(items []domain.Item) []domain.Item {
	out := make([]domain.Item, len(items))
	copy(out, items)
	for i := range out {
		out[i].Content = ""
	}
	return out
}
