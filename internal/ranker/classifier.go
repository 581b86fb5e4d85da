package ranker

import (
	"strings"

	"quantumdaily/internal/domain"
)

// epsilon keeps the normalization total, so zero-keyword inputs come out
// near {0,0} instead of dividing by zero.
const epsilon = 1e-6

var industryKeywords = []string{
	"partnership", "funding", "acquisition", "deal", "deploy", "product",
	"roadmap", "market", "customer", "commercial", "hiring", "announcement",
	"launch",
}

var techKeywords = []string{
	"qubit", "error rate", "decoherence", "benchmark", "algorithm",
	"architecture", "compiler", "gate", "circuit", "fault-tolerant",
	"paper", "arxiv",
}

// Classify maps an item's text to a soft industry/tech distribution. Each
// keyword counts once regardless of how often it repeats. Total: always
// returns a value, even for empty input.
func Classify(item domain.Item) domain.Classification {
	text := strings.ToLower(item.Title + " " + item.Content)

	industry := countPresent(text, industryKeywords)
	tech := countPresent(text, techKeywords)
	total := float64(industry+tech) + epsilon

	return domain.Classification{
		Industry: float64(industry) / total,
		Tech:     float64(tech) / total,
	}
}

func countPresent(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
