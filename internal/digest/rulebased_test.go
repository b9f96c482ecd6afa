package digest

import (
	"context"
	"testing"

	"rivalwatch/internal/domain"
)

func TestRuleBasedSummarize(t *testing.T) {
	t.Parallel()

	items := []domain.ClassifiedMention{
		{Mention: domain.Mention{Title: "One"}, Impact: domain.ImpactLow},
		{Mention: domain.Mention{Title: "Two"}, Impact: domain.ImpactMedium},
		{Mention: domain.Mention{Title: "Three"}, Impact: domain.ImpactLow},
		{Mention: domain.Mention{Title: "Four"}, Impact: domain.ImpactLow},
	}

	syn, err := RuleBasedSummarizer{}.Summarize(context.Background(), "Acme", items)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if syn.Summary != "One. Two. Three" {
		t.Fatalf("unexpected summary: %q", syn.Summary)
	}
	if len(syn.Tags) != 1 || syn.Tags[0] != defaultTag {
		t.Fatalf("unexpected tags: %v", syn.Tags)
	}
	if syn.Impact != domain.ImpactMedium {
		t.Fatalf("expected Medium, got %s", syn.Impact)
	}
	if len(syn.ActionPlan) != 2 {
		t.Fatalf("expected 2 template action items, got %d", len(syn.ActionPlan))
	}
	for _, item := range syn.ActionPlan {
		if item.Title == "" || item.Owner == "" {
			t.Fatalf("template action item incomplete: %+v", item)
		}
	}
}

func TestRuleBasedSummarizeHighImpactItem(t *testing.T) {
	t.Parallel()

	items := Classify("Acme", []domain.Mention{
		{Title: "Acme announces acquisition of Widgets Inc", URL: "https://news.example/acme"},
	})

	syn, err := RuleBasedSummarizer{}.Summarize(context.Background(), "Acme", items)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if syn.Impact != domain.ImpactHigh {
		t.Fatalf("acquisition item must yield High, got %s", syn.Impact)
	}
	if len(syn.ActionPlan) == 0 {
		t.Fatalf("action plan must not be empty")
	}
}
