package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"quantumdaily/internal/domain"
)

const defaultGoogleNewsBaseURL = "https://news.google.com/rss/search"

// GoogleNewsProvider runs a query against Google News RSS. Free and
// keyless; snippets can be short and publication times vary.
type GoogleNewsProvider struct {
	lang    string
	country string
	baseURL string
	parser  *gofeed.Parser
}

// NewGoogleNewsProvider defaults to en/US.
func NewGoogleNewsProvider(lang, country string) *GoogleNewsProvider {
	if lang == "" {
		lang = "en"
	}
	if country == "" {
		country = "US"
	}
	return &GoogleNewsProvider{
		lang:    lang,
		country: country,
		baseURL: defaultGoogleNewsBaseURL,
		parser:  gofeed.NewParser(),
	}
}

func (g *GoogleNewsProvider) Name() string {
	return "google_news_rss"
}

func (g *GoogleNewsProvider) buildURL(topic string) string {
	q := strings.ReplaceAll(topic, " ", "+")
	return fmt.Sprintf("%s?q=%s+when:1d&hl=%s&gl=%s&ceid=%s",
		g.baseURL, q, g.lang, g.country, url.QueryEscape(g.country+":"+g.lang))
}

// Fetch oversamples the feed, drops entries older than since, and dedupes
// before applying the per-provider cap.
func (g *GoogleNewsProvider) Fetch(ctx context.Context, topic string, since time.Time, maxItems int) ([]domain.Item, error) {
	feed, err := g.parser.ParseURLWithContext(g.buildURL(topic), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse google news feed: %w", err)
	}

	sourceName := feed.Title
	if sourceName == "" {
		sourceName = "Google News"
	}

	items := make([]domain.Item, 0, maxItems)
	for i, entry := range feed.Items {
		if i >= maxItems*2 {
			break
		}
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

	return capItems(Dedupe(items), maxItems), nil
}

func capItems(items []domain.Item, maxItems int) []domain.Item {
	if maxItems > 0 && len(items) > maxItems {
		return items[:maxItems]
	}
	return items
}
