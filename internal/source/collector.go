package source

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"rivalwatch/internal/domain"
	"rivalwatch/internal/ports"
)

// GlobalKeywords is the intent clause used for competitors that carry no
// extraQueries of their own.
var GlobalKeywords = []string{
	"acquisition", "merger", "funding", "investment", "raise", "partnership",
	"alliance", "integration", "launch", "pilot", "trial", "rollout",
	"pricing", "price", "discount", "subscription", "regulation", "policy",
	"fine", "tender", "RFP", "contract", "exclusive", "layoff", "hiring",
	"expansion", "Gauteng", "South Africa", "fraud", "escrow", "insurance",
	"finance", "warranty", "mechanic", "inspection", "DEKRA", "F&I",
}

// Collector fans one competitor's configured sources out concurrently and
// merges whatever arrives: one structured-search query plus one fetch per
// configured feed URL.
type Collector struct {
	search ports.SearchClient
	feeds  ports.FeedFetcher
	scope  string
	logger *slog.Logger
}

var _ ports.MentionCollector = (*Collector)(nil)

// NewCollector wires the search client and feed fetcher with the fixed
// geographic scope clause.
func NewCollector(search ports.SearchClient, feeds ports.FeedFetcher, scope string, logger *slog.Logger) *Collector {
	return &Collector{
		search: search,
		feeds:  feeds,
		scope:  scope,
		logger: logger,
	}
}

// Collect gathers all raw mentions for one competitor. A single source's
// failure degrades to an empty contribution for that source only; the other
// sources' results still come back. Results are merged in a stable order:
// search first, then feeds in configuration order.
func (c *Collector) Collect(ctx context.Context, comp domain.Competitor) []domain.Mention {
	slots := make([][]domain.Mention, 1+len(comp.RSS))
	var wg sync.WaitGroup

	if c.search != nil {
		query := c.buildQuery(comp)
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := c.search.Search(ctx, query)
			if err != nil {
				c.warn("search degraded to empty", "competitor", comp.Name, "error", err)
				return
			}
			slots[0] = items
		}()
	}

	for i, feedURL := range comp.RSS {
		wg.Add(1)
		go func(slot int, url string) {
			defer wg.Done()
			items, err := c.feeds.Fetch(ctx, url)
			if err != nil {
				c.warn("feed degraded to empty", "competitor", comp.Name, "feed", url, "error", err)
				return
			}
			slots[slot] = items
		}(i+1, feedURL)
	}

	wg.Wait()

	var merged []domain.Mention
	for _, items := range slots {
		merged = append(merged, items...)
	}
	return merged
}

// buildQuery ANDs three clauses: entity identity (name OR aliases), the fixed
// geographic scope, and intent (extraQueries when present, else the global
// keyword list).
func (c *Collector) buildQuery(comp domain.Competitor) string {
	identity := quotedOr(append([]string{comp.Name}, comp.Aliases...))

	intentTerms := comp.ExtraQueries
	if len(intentTerms) == 0 {
		intentTerms = GlobalKeywords
	}
	intent := quotedOr(intentTerms)

	return identity + " AND " + c.scope + " AND " + intent
}

func quotedOr(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		quoted = append(quoted, `"`+term+`"`)
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}

func (c *Collector) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
