package digest

import (
	"context"
	"strings"

	"rivalwatch/internal/domain"
	"rivalwatch/internal/ports"
)

const defaultTag = "New Business/Deals"

// RuleBasedSummarizer is the deterministic synthesis variant. It is the
// default when no model is configured and the fallback when the model-backed
// variant returns anything unusable.
type RuleBasedSummarizer struct{}

var _ ports.Summarizer = RuleBasedSummarizer{}

// Summarize builds the entry fields from the items alone: the first three
// titles become the summary, the severity is the most severe heuristic tier
// present, and the action plan is a fixed two-item template.
func (RuleBasedSummarizer) Summarize(_ context.Context, _ string, items []domain.ClassifiedMention) (domain.Synthesis, error) {
	titles := make([]string, 0, 3)
	for _, item := range items {
		if len(titles) == 3 {
			break
		}
		titles = append(titles, item.Title)
	}

	return domain.Synthesis{
		Summary: strings.Join(titles, ". "),
		Tags:    []string{defaultTag},
		Impact:  OverallImpact(items),
		ActionPlan: []domain.ActionItem{
			{Title: "Contact potential partner overlap", Owner: "Partnerships", ETA: "2d", Effort: "Low", Impact: "Medium"},
			{Title: "Spin up targeted comms for Gauteng", Owner: "Growth", ETA: "3d", Effort: "Low", Impact: "Medium"},
		},
	}, nil
}
