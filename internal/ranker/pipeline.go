package ranker

import (
	"sort"
	"time"

	"quantumdaily/internal/domain"
)

// DefaultTopN is the number of items selected into a daily issue.
const DefaultTopN = 12

// Rank classifies and scores every item against a preference snapshot,
// sorts descending by score, and truncates to topN. The sort is stable, so
// ties preserve provider-fetch order. Items keep their Category and Score
// fields filled in; an empty input yields an empty (non-nil) result.
func Rank(items []domain.Item, prefs domain.Preferences, topN int, now time.Time) []domain.Item {
	if topN <= 0 {
		topN = DefaultTopN
	}

	ranked := make([]domain.Item, 0, len(items))
	for _, item := range items {
		cls := Classify(item)
		item.Category = categoryFor(cls)
		item.Score = Score(item, cls, prefs, now)
		ranked = append(ranked, item)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// categoryFor picks the dominant affinity; ties favor industry.
func categoryFor(cls domain.Classification) string {
	if cls.Industry >= cls.Tech {
		return domain.CategoryIndustry
	}
	return domain.CategoryTech
}
