package digest

import (
	"testing"

	"rivalwatch/internal/domain"
)

func TestDeduplicatePreservesFirstSeenOrder(t *testing.T) {
	t.Parallel()

	input := []domain.Mention{
		{Title: "first", URL: "https://a.example/1"},
		{Title: "second", URL: "https://b.example/2"},
		{Title: "dup of first", URL: "https://a.example/1"},
		{Title: "third", URL: "https://c.example/3"},
		{Title: "dup of second", URL: "https://b.example/2"},
	}

	out := Deduplicate(input)

	if len(out) != 3 {
		t.Fatalf("expected 3 mentions, got %d", len(out))
	}
	if out[0].Title != "first" || out[1].Title != "second" || out[2].Title != "third" {
		t.Fatalf("order not preserved: %+v", out)
	}

	seen := map[string]bool{}
	for _, m := range out {
		if seen[m.URL] {
			t.Fatalf("duplicate url survived: %s", m.URL)
		}
		seen[m.URL] = true
	}
}

func TestDeduplicateOutputNeverLongerThanInput(t *testing.T) {
	t.Parallel()

	input := []domain.Mention{
		{URL: "https://a.example/1"},
		{URL: "https://a.example/1"},
	}
	if got := len(Deduplicate(input)); got > len(input) {
		t.Fatalf("output longer than input: %d > %d", got, len(input))
	}
	if got := len(Deduplicate(nil)); got != 0 {
		t.Fatalf("expected empty output for nil input, got %d", got)
	}
}

func TestDeduplicateTreatsURLVariantsAsDistinct(t *testing.T) {
	t.Parallel()

	input := []domain.Mention{
		{URL: "https://a.example/article"},
		{URL: "https://a.example/article?utm=1"},
		{URL: "https://A.example/article"},
	}

	if got := len(Deduplicate(input)); got != 3 {
		t.Fatalf("url variants must stay distinct, got %d of 3", got)
	}
}
