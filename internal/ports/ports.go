package ports

import (
	"context"
	"time"

	"rivalwatch/internal/domain"
)

// SearchClient queries the structured search provider for competitor mentions.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]domain.Mention, error)
}

// FeedFetcher pulls mention records out of one syndication feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]domain.Mention, error)
}

// MentionCollector gathers the raw mention set for one competitor from all of
// its configured sources. A failing source degrades to an empty contribution.
type MentionCollector interface {
	Collect(ctx context.Context, competitor domain.Competitor) []domain.Mention
}

// Summarizer turns a competitor's surviving mentions into digest-entry fields.
type Summarizer interface {
	Summarize(ctx context.Context, competitor string, items []domain.ClassifiedMention) (domain.Synthesis, error)
}

// ArtifactStore publishes digests and maintains the latest pointer.
type ArtifactStore interface {
	Publish(ctx context.Context, digest domain.Digest) (string, error)
	Latest(ctx context.Context) (domain.Digest, error)
}

// CacheEntry is a stored response payload keyed by request identity.
type CacheEntry struct {
	Body        []byte
	ContentType string
	CachedAt    time.Time
}

// ByteStore is the key/value backing of the serving caches. Keys are scoped by
// group so a whole resource-set version can be dropped in one call.
type ByteStore interface {
	Get(ctx context.Context, group, key string) (CacheEntry, bool, error)
	Put(ctx context.Context, group, key string, entry CacheEntry) error
	DeleteGroup(ctx context.Context, group string) error
	Groups(ctx context.Context) ([]string, error)
}

// Notification is the structured message pushed to observers on data changes.
type Notification struct {
	Type string `json:"type"`
}

// Broadcaster fans a notification out to all active observers. With no
// observers listening a broadcast is a no-op, not an error.
type Broadcaster interface {
	Broadcast(msg Notification)
}

// Scheduler controls when collection runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
