package sources

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"sort"
	"strings"
	"time"

	"quantumdaily/internal/domain"
	"quantumdaily/internal/ports"
)

// Provider is a single upstream news source strategy.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, topic string, since time.Time, maxItems int) ([]domain.Item, error)
}

// Aggregator implements ports.ItemSource over registered providers. One
// failing provider contributes nothing; the others proceed.
type Aggregator struct {
	providers []Provider
	topic     string
	maxItems  int
	logger    *slog.Logger
}

var _ ports.ItemSource = (*Aggregator)(nil)

// NewAggregator builds an empty aggregator for the given topic.
func NewAggregator(topic string, maxItemsPerProvider int, logger *slog.Logger) *Aggregator {
	if maxItemsPerProvider <= 0 {
		maxItemsPerProvider = 50
	}
	return &Aggregator{
		topic:    topic,
		maxItems: maxItemsPerProvider,
		logger:   logger,
	}
}

// Register adds a provider to the fetch rotation.
func (a *Aggregator) Register(p Provider) {
	a.providers = append(a.providers, p)
}

// FetchAll queries every provider, merges, dedupes, and presorts newest
// first. Returns whatever could be fetched; never fails the whole batch.
func (a *Aggregator) FetchAll(ctx context.Context, since time.Time) ([]domain.Item, error) {
	var all []domain.Item
	for _, p := range a.providers {
		items, err := p.Fetch(ctx, a.topic, since, a.maxItems)
		if err != nil {
			a.warn("provider failed", "provider", p.Name(), "error", err)
			continue
		}
		a.debug("provider done", "provider", p.Name(), "count", len(items))
		all = append(all, items...)
	}

	merged := Dedupe(all)
	sort.SliceStable(merged, func(i, j int) bool {
		return publishedOrZero(merged[i]).After(publishedOrZero(merged[j]))
	})
	return merged, nil
}

// Dedupe drops repeated items keyed by normalized URL, falling back to the
// title when the URL is empty. First occurrence wins.
func Dedupe(items []domain.Item) []domain.Item {
	seen := map[string]struct{}{}
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		key := dedupeKey(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

func dedupeKey(it domain.Item) string {
	raw := strings.ToLower(strings.TrimSpace(it.URL))
	if raw == "" {
		raw = strings.ToLower(strings.TrimSpace(it.Title))
	}
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func publishedOrZero(it domain.Item) time.Time {
	if it.PublishedAt == nil {
		return time.Time{}
	}
	return *it.PublishedAt
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
