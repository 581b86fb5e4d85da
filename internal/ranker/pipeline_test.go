package ranker

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"quantumdaily/internal/domain"
)

func TestRankTopKTruncation(t *testing.T) {
	t.Parallel()

	items := make([]domain.Item, 20)
	for i := range items {
		items[i] = domain.Item{
			URL:   fmt.Sprintf("https://example.com/%d", i),
			Title: fmt.Sprintf("funding round %d", i),
		}
	}

	ranked := Rank(items, domain.DefaultPreferences(), 12, time.Now().UTC())

	if len(ranked) != 12 {
		t.Fatalf("expected 12 items, got %d", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("not sorted descending at %d: %v > %v", i, ranked[i].Score, ranked[i-1].Score)
		}
	}
}

func TestRankEmptyInput(t *testing.T) {
	t.Parallel()

	ranked := Rank(nil, domain.DefaultPreferences(), 12, time.Now().UTC())

	if ranked == nil || len(ranked) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", ranked)
	}
}

func TestRankDeterministic(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.February, 10, 8, 0, 0, 0, time.UTC)
	published := now.Add(-6 * time.Hour)
	items := []domain.Item{
		{URL: "a", Title: "qubit benchmark paper", PublishedAt: &published},
		{URL: "b", Title: "acquisition deal announced", Source: "HPCwire"},
		{URL: "c", Title: "compiler gate circuit", PublishedAt: &published},
		{URL: "d", Title: "nothing in particular"},
	}
	prefs := domain.DefaultPreferences()
	prefs.SourceBias["HPCwire"] = 0.2

	first := Rank(items, prefs, 12, now)
	second := Rank(items, prefs, 12, now)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rank not deterministic:\n%v\n%v", first, second)
	}
}

func TestRankTiesPreserveInputOrder(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	items := []domain.Item{
		{URL: "first", Title: "plain news"},
		{URL: "second", Title: "other plain news"},
		{URL: "third", Title: "more plain news"},
	}

	ranked := Rank(items, domain.DefaultPreferences(), 12, now)

	if ranked[0].URL != "first" || ranked[1].URL != "second" || ranked[2].URL != "third" {
		t.Fatalf("stable sort broke tie order: %v %v %v", ranked[0].URL, ranked[1].URL, ranked[2].URL)
	}
}

func TestRankAssignsCategories(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{URL: "biz", Title: "partnership funding deal"},
		{URL: "sci", Title: "qubit decoherence benchmark"},
		{URL: "none", Title: "nothing matches here"},
	}

	ranked := Rank(items, domain.DefaultPreferences(), 12, time.Now().UTC())

	byURL := map[string]domain.Item{}
	for _, it := range ranked {
		byURL[it.URL] = it
	}

	if byURL["biz"].Category != domain.CategoryIndustry {
		t.Fatalf("expected industry, got %s", byURL["biz"].Category)
	}
	if byURL["sci"].Category != domain.CategoryTech {
		t.Fatalf("expected tech, got %s", byURL["sci"].Category)
	}
	// zero/zero classification ties favor industry
	if byURL["none"].Category != domain.CategoryIndustry {
		t.Fatalf("expected tie to favor industry, got %s", byURL["none"].Category)
	}
}

func TestRankDefaultTopN(t *testing.T) {
	t.Parallel()

	items := make([]domain.Item, 15)
	for i := range items {
		items[i] = domain.Item{Title: fmt.Sprintf("item %d", i)}
	}

	ranked := Rank(items, domain.DefaultPreferences(), 0, time.Now().UTC())

	if len(ranked) != DefaultTopN {
		t.Fatalf("expected default top-N %d, got %d", DefaultTopN, len(ranked))
	}
}
