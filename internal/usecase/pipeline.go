package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rivalwatch/internal/digest"
	"rivalwatch/internal/domain"
	"rivalwatch/internal/ports"
)

const (
	defaultMaxInFlight = 6
	maxSourcesPerEntry = 6
)

// PipelineDeps wires all driven adapters into the collection pipeline.
type PipelineDeps struct {
	Collector   ports.MentionCollector
	Summarizer  ports.Summarizer
	Fallback    ports.Summarizer
	Store       ports.ArtifactStore
	Window      time.Duration
	MaxInFlight int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Pipeline implements the collect-classify-summarize-publish workflow.
type Pipeline struct {
	collector   ports.MentionCollector
	summarizer  ports.Summarizer
	fallback    ports.Summarizer
	store       ports.ArtifactStore
	window      time.Duration
	maxInFlight int
	logger      *slog.Logger
	now         func() time.Time
}

// NewPipeline constructs the orchestration component, filling in defaults for
// the recency window and concurrency bound.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		collector:   deps.Collector,
		summarizer:  deps.Summarizer,
		fallback:    deps.Fallback,
		store:       deps.Store,
		window:      deps.Window,
		maxInFlight: deps.MaxInFlight,
		logger:      deps.Logger,
		now:         deps.Now,
	}
	if p.window <= 0 {
		p.window = digest.RecencyWindow
	}
	if p.maxInFlight <= 0 {
		p.maxInFlight = defaultMaxInFlight
	}
	if p.fallback == nil {
		p.fallback = digest.RuleBasedSummarizer{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Run executes one full collection over the tracked competitors and publishes
// the resulting digest. Competitors are processed concurrently under the
// in-flight bound; one competitor's trouble never aborts the others.
// Competitors with zero surviving mentions are omitted from the digest.
func (p *Pipeline) Run(ctx context.Context, competitors []domain.Competitor) (domain.Digest, error) {
	if p.collector == nil {
		return domain.Digest{}, fmt.Errorf("pipeline: collector is not configured")
	}
	if len(competitors) == 0 {
		return domain.Digest{}, fmt.Errorf("pipeline: no competitors configured")
	}

	runID := uuid.NewString()
	now := p.now().UTC()
	date := now.Format("2006-01-02")
	p.info("run started", "run_id", runID, "date", date, "competitors", len(competitors))

	// Index-addressed slots keep digest entries in configuration order
	// regardless of worker completion order.
	slots := make([]*domain.DigestEntry, len(competitors))

	var group errgroup.Group
	group.SetLimit(p.maxInFlight)
	for i, comp := range competitors {
		group.Go(func() error {
			slots[i] = p.process(ctx, runID, comp, now, date)
			return nil
		})
	}
	_ = group.Wait()

	result := domain.Digest{
		Date:        date,
		GeneratedAt: now,
		Entries:     make([]domain.DigestEntry, 0, len(competitors)),
	}
	for _, entry := range slots {
		if entry != nil {
			result.Entries = append(result.Entries, *entry)
		}
	}

	if p.store != nil {
		path, err := p.store.Publish(ctx, result)
		if err != nil {
			return domain.Digest{}, fmt.Errorf("publish digest: %w", err)
		}
		p.info("digest published", "run_id", runID, "path", path, "entries", len(result.Entries))
	}

	return result, nil
}

func (p *Pipeline) process(ctx context.Context, runID string, comp domain.Competitor, now time.Time, date string) *domain.DigestEntry {
	items := p.collector.Collect(ctx, comp)
	items = digest.FilterRecent(items, now, p.window)
	items = digest.Deduplicate(items)
	if len(items) == 0 {
		p.debug("no surviving mentions", "run_id", runID, "competitor", comp.Name)
		return nil
	}

	classified := digest.Classify(comp.Name, items)
	synthesis := p.summarize(ctx, comp.Name, classified)

	sources := make([]domain.SourceRef, 0, maxSourcesPerEntry)
	for _, item := range items {
		if len(sources) == maxSourcesPerEntry {
			break
		}
		sources = append(sources, domain.SourceRef{URL: item.URL})
	}

	return &domain.DigestEntry{
		ID:         domain.EntryID(comp.Name, date),
		Competitor: comp.Name,
		Tags:       synthesis.Tags,
		Impact:     synthesis.Impact,
		Summary:    synthesis.Summary,
		Sources:    sources,
		ActionPlan: synthesis.ActionPlan,
	}
}

// summarize prefers the model-backed variant and degrades to the rule-based
// one on any error, never failing the competitor.
func (p *Pipeline) summarize(ctx context.Context, competitor string, items []domain.ClassifiedMention) domain.Synthesis {
	if p.summarizer != nil {
		synthesis, err := p.summarizer.Summarize(ctx, competitor, items)
		if err == nil {
			return synthesis
		}
		p.warn("model synthesis unusable, using rule-based fallback", "competitor", competitor, "error", err)
	}

	synthesis, err := p.fallback.Summarize(ctx, competitor, items)
	if err != nil {
		// The rule-based variant is total; reaching this means a broken
		// custom fallback was injected.
		p.warn("fallback synthesis failed", "competitor", competitor, "error", err)
		return domain.Synthesis{Summary: "No high-signal items today.", Impact: domain.ImpactLow}
	}
	return synthesis
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
