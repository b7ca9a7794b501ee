package strategy

import (
	"strings"

	"options-lab/internal/domain"
)

// Keyword lists for headline polarity. Matching is case-insensitive
// substring search over the description, falling back to the title.
var (
	positiveKeywords = []string{"beats", "surge", "upgrade", "positive"}
	negativeKeywords = []string{"misses", "downgrade", "negative", "lawsuit"}
)

// computeNewsBias counts positive vs negative headline matches and
// returns positive/(positive+negative). No articles or no keyword
// matches yields the neutral 0.5.
func computeNewsBias(items []domain.NewsItem) float64 {
	if len(items) == 0 {
		return 0.5
	}

	positive := 0
	negative := 0
	for _, item := range items {
		summary := item.Description
		if summary == "" {
			summary = item.Title
		}
		summary = strings.ToLower(summary)

		if containsAny(summary, positiveKeywords) {
			positive++
		}
		if containsAny(summary, negativeKeywords) {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0.5
	}
	bias := float64(positive) / float64(total)
	if bias > 1 {
		return 1
	}
	if bias < 0 {
		return 0
	}
	return bias
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
