package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quantumdaily/internal/domain"
)

type stubProvider struct {
	name  string
	items []domain.Item
	err   error
}

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Fetch(context.Context, string, time.Time, int) ([]domain.Item, error) {
	return s.items, s.err
}

func TestDedupePrefersFirstOccurrence(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{URL: "https://example.com/a", Title: "first"},
		{URL: "HTTPS://EXAMPLE.COM/A ", Title: "same url, different case"},
		{URL: "", Title: "No URL"},
		{URL: "", Title: "no url"},
		{URL: "https://example.com/b", Title: "kept"},
	}

	out := Dedupe(items)

	if len(out) != 3 {
		t.Fatalf("expected 3 items, got %d: %v", len(out), out)
	}
	if out[0].Title != "first" {
		t.Fatalf("expected first occurrence kept, got %q", out[0].Title)
	}
}

func TestAggregatorSoftFailsBrokenProvider(t *testing.T) {
	t.Parallel()

	agg := NewAggregator("quantum computing", 50, nil)
	agg.Register(stubProvider{name: "broken", err: errors.New("boom")})
	agg.Register(stubProvider{name: "ok", items: []domain.Item{
		{URL: "https://example.com/x", Title: "survivor"},
	}})

	items, err := agg.FetchAll(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "survivor" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestAggregatorMergesNewestFirst(t *testing.T) {
	t.Parallel()

	old := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)

	agg := NewAggregator("topic", 50, nil)
	agg.Register(stubProvider{name: "a", items: []domain.Item{
		{URL: "https://example.com/old", PublishedAt: &old},
		{URL: "https://example.com/undated"},
	}})
	agg.Register(stubProvider{name: "b", items: []domain.Item{
		{URL: "https://example.com/fresh", PublishedAt: &fresh},
	}})

	items, err := agg.FetchAll(context.Background(), old.Add(-time.Hour))
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}

	if items[0].URL != "https://example.com/fresh" {
		t.Fatalf("expected freshest first, got %s", items[0].URL)
	}
	if items[len(items)-1].URL != "https://example.com/undated" {
		t.Fatalf("expected undated item last, got %s", items[len(items)-1].URL)
	}
}

func TestStaticRSSProviderFetch(t *testing.T) {
	t.Parallel()

	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>HPCwire</title>
    <item>
      <title>Quantum funding round closes</title>
      <link>https://example.com/funding</link>
      <description>A partnership announcement.</description>
      <pubDate>Mon, 02 Feb 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Ancient news</title>
      <link>https://example.com/ancient</link>
      <pubDate>Mon, 05 Jan 2026 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	defer server.Close()

	provider := NewStaticRSSProvider([]string{server.URL}, nil)
	since := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	items, err := provider.Fetch(context.Background(), "", since, 50)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item after since-filter, got %d", len(items))
	}
	if items[0].Source != "HPCwire" {
		t.Fatalf("unexpected source: %s", items[0].Source)
	}
	if items[0].URL != "https://example.com/funding" {
		t.Fatalf("unexpected url: %s", items[0].URL)
	}
	if items[0].PublishedAt == nil {
		t.Fatalf("expected parsed publish date")
	}
}

func TestStaticRSSProviderSkipsBrokenFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewStaticRSSProvider([]string{server.URL}, nil)

	items, err := provider.Fetch(context.Background(), "", time.Now().Add(-24*time.Hour), 50)
	if err != nil {
		t.Fatalf("expected soft-fail, got error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestNewsAPIProviderFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("missing api key header, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "quantum computing" {
			t.Errorf("unexpected query: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"articles":[
			{"url":"https://example.com/1","title":"Deal announced","description":"partnership",
			 "publishedAt":"2026-02-02T09:00:00Z","source":{"name":"Example Wire"}},
			{"url":"https://example.com/2","title":"No date","description":"","publishedAt":"","source":{}}
		]}`))
	}))
	defer server.Close()

	provider := NewNewsAPIProvider("test-key")
	provider.baseURL = server.URL

	items, err := provider.Fetch(context.Background(), "quantum computing", time.Now().Add(-24*time.Hour), 50)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Source != "Example Wire" {
		t.Fatalf("unexpected source: %s", items[0].Source)
	}
	if items[0].PublishedAt == nil || items[0].PublishedAt.Hour() != 9 {
		t.Fatalf("unexpected published_at: %v", items[0].PublishedAt)
	}
	if items[1].PublishedAt != nil {
		t.Fatalf("expected nil published_at for empty timestamp")
	}
	if items[1].Source != "NewsAPI" {
		t.Fatalf("expected NewsAPI fallback source, got %s", items[1].Source)
	}
}

func TestNewsAPIProviderErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewNewsAPIProvider("test-key")
	provider.baseURL = server.URL

	if _, err := provider.Fetch(context.Background(), "topic", time.Now(), 10); err == nil {
		t.Fatalf("expected error on 429")
	}
}
