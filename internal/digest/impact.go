package digest

import (
	"regexp"
	"strings"

	"rivalwatch/internal/domain"
)

var (
	highExpr   = regexp.MustCompile(`acquisition|merger|exclusive|contract|funding|raise|integration`)
	mediumExpr = regexp.MustCompile(`launch|pilot|pricing|expansion|partnership`)
)

// ClassifyImpact scores a mention title against the fixed vocabulary tiers.
// Tiers are checked in order and the first match wins.
func ClassifyImpact(title string) domain.Impact {
	t := strings.ToLower(title)
	switch {
	case highExpr.MatchString(t):
		return domain.ImpactHigh
	case mediumExpr.MatchString(t):
		return domain.ImpactMedium
	default:
		return domain.ImpactLow
	}
}

// Classify attaches the competitor name and a heuristic severity to each mention.
func Classify(competitor string, items []domain.Mention) []domain.ClassifiedMention {
	out := make([]domain.ClassifiedMention, 0, len(items))
	for _, item := range items {
		out = append(out, domain.ClassifiedMention{
			Mention:    item,
			Competitor: competitor,
			Impact:     ClassifyImpact(item.Title),
		})
	}
	return out
}

// OverallImpact folds per-item severities into one entry-level label: the most
// severe tier present among the items.
func OverallImpact(items []domain.ClassifiedMention) domain.Impact {
	result := domain.ImpactLow
	for _, item := range items {
		switch item.Impact {
		case domain.ImpactHigh:
			return domain.ImpactHigh
		case domain.ImpactMedium:
			result = domain.ImpactMedium
		}
	}
	return result
}
