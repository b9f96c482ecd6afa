package domain

import (
	"strings"
	"time"
)

// Impact is the coarse severity label attached to mentions and digest entries.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// Mention is one raw sighting of a tracked competitor at a source.
// A zero SeenAt marks a timestamp the source did not provide or we could not parse.
type Mention struct {
	Title  string
	URL    string
	Source string
	SeenAt time.Time
}

// ClassifiedMention pairs a mention with its competitor and heuristic severity.
type ClassifiedMention struct {
	Mention
	Competitor string
	Impact     Impact
}

// ActionItem is one concrete counter-move inside an entry's action plan.
// It has no identity beyond its position in the plan.
type ActionItem struct {
	Title  string `json:"title"`
	Owner  string `json:"owner"`
	ETA    string `json:"eta"`
	Effort string `json:"effort"`
	Impact string `json:"impact"`
}

// SourceRef points at one mention URL backing a digest entry.
type SourceRef struct {
	URL string `json:"url"`
}

// Synthesis is the summarizer output for one competitor before entry assembly.
type Synthesis struct {
	Summary    string
	Tags       []string
	Impact     Impact
	ActionPlan []ActionItem
}

// DigestEntry is one competitor's synthesized result for a generation run.
type DigestEntry struct {
	ID         string       `json:"id"`
	Competitor string       `json:"competitor"`
	Tags       []string     `json:"tags"`
	Impact     Impact       `json:"impact"`
	Summary    string       `json:"summary"`
	Sources    []SourceRef  `json:"sources"`
	ActionPlan []ActionItem `json:"action_plan"`
}

// Digest is the published artifact of one generation run. It is never mutated
// after publication; the next run supersedes it through the latest pointer.
type Digest struct {
	Date        string        `json:"date"`
	GeneratedAt time.Time     `json:"generated_at"`
	Entries     []DigestEntry `json:"entries"`
}

// Competitor describes one tracked entity from configuration.
type Competitor struct {
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases"`
	ExtraQueries []string `json:"extraQueries,omitempty"`
	RSS          []string `json:"rss,omitempty"`
}

// EntryID derives the digest-entry identifier for a competitor and run date.
// The same name and date always yield the same id, so a same-day rerun
// produces byte-identical identifiers.
func EntryID(name, date string) string {
	var b strings.Builder
	b.Grow(len(name) + 1 + len(date))
	dash := false
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "competitor"
	}
	return slug + "-" + date
}
