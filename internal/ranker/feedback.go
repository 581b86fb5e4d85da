package ranker

import (
	"strings"

	"quantumdaily/internal/domain"
)

const (
	// DefaultLearningRate is the per-event nudge applied to weights and biases.
	DefaultLearningRate = 0.05

	// biasBound limits accumulated per-source/per-topic bias to [-0.5, 0.5].
	biasBound = 0.5
)

// ApplyFeedback consumes feedback events in order and mutates prefs under
// the bounded update rules: global weights stay a strict two-way split
// (clamping one side always overwrites the other), biases accumulate
// unbounded during the batch and are clamped to [-biasBound, biasBound]
// once at the end. Unrecognized aspects are silently ignored. The caller
// owns persistence of the returned record.
func ApplyFeedback(prefs *domain.Preferences, events []domain.FeedbackEvent, learningRate float64) *domain.Preferences {
	for _, ev := range events {
		delta := signalDelta(ev.Signal, learningRate)

		switch {
		case ev.Aspect == domain.CategoryIndustry:
			w := clamp01(prefs.IndustryWeight + delta)
			prefs.IndustryWeight = w
			prefs.TechWeight = 1 - w
		case ev.Aspect == domain.CategoryTech:
			w := clamp01(prefs.TechWeight + delta)
			prefs.TechWeight = w
			prefs.IndustryWeight = 1 - w
		case strings.HasPrefix(ev.Aspect, domain.AspectSourcePrefix):
			name := strings.TrimPrefix(ev.Aspect, domain.AspectSourcePrefix)
			if prefs.SourceBias == nil {
				prefs.SourceBias = domain.BiasMap{}
			}
			prefs.SourceBias[name] += delta
		case strings.HasPrefix(ev.Aspect, domain.AspectTopicPrefix):
			name := strings.TrimPrefix(ev.Aspect, domain.AspectTopicPrefix)
			if prefs.TopicBias == nil {
				prefs.TopicBias = domain.BiasMap{}
			}
			prefs.TopicBias[name] += delta
		}
	}

	clampBiases(prefs.SourceBias)
	clampBiases(prefs.TopicBias)

	return prefs
}

func signalDelta(signal string, learningRate float64) float64 {
	switch signal {
	case domain.SignalUp, domain.SignalMore:
		return learningRate
	case domain.SignalDown, domain.SignalLess:
		return -learningRate
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampBiases(m domain.BiasMap) {
	for name, v := range m {
		if v > biasBound {
			m[name] = biasBound
		} else if v < -biasBound {
			m[name] = -biasBound
		}
	}
}
