package ranker

import (
	"math"
	"time"

	"quantumdaily/internal/domain"
)

// recencyFactor compresses the freshness bonus so recency never dominates
// classification.
const recencyFactor = 0.10

// Score combines classification, recency, and preference biases into the
// composite rank score. The result is unbounded; only relative ordering
// matters. Missing published_at and unknown sources/topics contribute zero.
func Score(item domain.Item, cls domain.Classification, prefs domain.Preferences, now time.Time) float64 {
	base := prefs.IndustryWeight*cls.Industry + prefs.TechWeight*cls.Tech

	published := now
	if item.PublishedAt != nil {
		published = *item.PublishedAt
	}
	ageHours := now.Sub(published).Hours()
	if ageHours < 1 {
		// floor guards against divide-by-zero and clock-skewed future items
		ageHours = 1
	}
	recency := recencyFactor * math.Log10(1+1/ageHours)

	bias := prefs.SourceBias.Get(item.Source)
	bias += prefs.TopicBias.Get(domain.CategoryIndustry) * cls.Industry
	bias += prefs.TopicBias.Get(domain.CategoryTech) * cls.Tech

	return base + recency + bias
}
