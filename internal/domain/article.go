package domain

import "time"

// Category labels assigned by the ranking pipeline.
const (
	CategoryIndustry = "industry"
	CategoryTech     = "tech"
)

// Feedback signals accepted from the HTTP boundary.
const (
	SignalUp   = "+1"
	SignalDown = "-1"
	SignalMore = "more"
	SignalLess = "less"
)

// Aspect prefixes for targeted feedback.
const (
	AspectSourcePrefix = "source:"
	AspectTopicPrefix  = "topic:"
)

// Item is an ephemeral per-run candidate produced by ingestion. The ranking
// pipeline fills in Category and Score; summarization fills in the summary
// fields. An Item becomes an Article row only when selected into the top-K.
type Item struct {
	ID           int64      `json:"id,omitempty"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Content      string     `json:"content,omitempty"`
	PublishedAt  *time.Time `json:"published_at"`
	Source       string     `json:"source"`
	Category     string     `json:"category,omitempty"`
	Score        float64    `json:"score,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	PlainSummary string     `json:"plain_summary,omitempty"`
	TLDRBullets  []string   `json:"tldr_bullets,omitempty"`
}

// Classification is a soft two-way affinity distribution, each component in
// [0,1]. Components sum to ~1 except when no keywords match, where both
// stay near zero. Computed fresh per item per run, never persisted.
type Classification struct {
	Industry float64 `json:"industry"`
	Tech     float64 `json:"tech"`
}

// BiasMap stores per-name bias adjustments. Reads of absent keys return 0
// without inserting anything.
type BiasMap map[string]float64

// Get returns the bias for name, defaulting to 0 for absent keys.
func (m BiasMap) Get(name string) float64 {
	if m == nil {
		return 0
	}
	return m[name]
}

// Preferences is the single persistent record of learned weighting and
// biases, plus delivery settings. IndustryWeight+TechWeight is held at 1.0
// by every mutation site.
type Preferences struct {
	IndustryWeight float64 `json:"industry_weight"`
	TechWeight     float64 `json:"tech_weight"`
	Email          string  `json:"email"`
	SendHourLocal  int     `json:"send_hour_local"`
	SourceBias     BiasMap `json:"source_bias"`
	TopicBias      BiasMap `json:"topic_bias"`
}

// DefaultPreferences returns the record created on first access.
func DefaultPreferences() Preferences {
	return Preferences{
		IndustryWeight: 0.7,
		TechWeight:     0.3,
		SendHourLocal:  8,
		SourceBias:     BiasMap{},
		TopicBias:      BiasMap{},
	}
}

// Summary is the output of summarization for one item.
type Summary struct {
	Plain   string   `json:"plain_summary"`
	Bullets []string `json:"tldr_bullets"`
}

// FeedbackEvent is an append-only record of a user signal tied to an
// aspect. Immutable once written; kept for audit, never replayed.
type FeedbackEvent struct {
	ID        int64     `json:"id,omitempty"`
	ArticleID int64     `json:"article_id"`
	Signal    string    `json:"signal"`
	Aspect    string    `json:"aspect"`
	CreatedAt time.Time `json:"ts"`
}

// DailyIssue is the persisted snapshot of one day's ranked selection,
// keyed by calendar date. Item snapshots drop raw content.
type DailyIssue struct {
	Date  string `json:"date"`
	Items []Item `json:"items"`
}
