package sources

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"quantumdaily/internal/domain"
)

// StaticRSSProvider walks a fixed list of feeds; the legacy fallback for
// publishers that never surface in query providers. A broken feed is
// skipped, not fatal.
type StaticRSSProvider struct {
	feeds  []string
	parser *gofeed.Parser
	logger *slog.Logger
}

func NewStaticRSSProvider(feeds []string, logger *slog.Logger) *StaticRSSProvider {
	return &StaticRSSProvider{
		feeds:  feeds,
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

func (s *StaticRSSProvider) Name() string {
	return "static_rss"
}

// Fetch ignores the topic: static feeds are already topic-scoped.
func (s *StaticRSSProvider) Fetch(ctx context.Context, _ string, since time.Time, maxItems int) ([]domain.Item, error) {
	var items []domain.Item
	for _, feedURL := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("feed skipped", "url", feedURL, "error", err)
			}
			continue
		}

		sourceName := feed.Title
		if sourceName == "" {
			sourceName = feedURL
		}

		for _, entry := range feed.Items {
			published := entry.PublishedParsed
			if published != nil && published.Before(since) {
				continue
			}
			items = append(items, domain.Item{
				URL:         entry.Link,
				Title:       entry.Title,
				Content:     entry.Description,
				PublishedAt: published,
				Source:      sourceName,
			})
		}
	}

	return capItems(Dedupe(items), maxItems), nil
}
