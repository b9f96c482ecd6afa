package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rivalwatch/internal/ports"
)

const maxResponseBytes = 16 << 20

// Fetcher retrieves one upstream resource by method and path.
type Fetcher interface {
	Fetch(ctx context.Context, method, path string) (ports.CacheEntry, error)
}

// UpstreamClient fetches resources from the origin the caches sit in front of.
type UpstreamClient struct {
	base   string
	client *http.Client
}

var _ Fetcher = (*UpstreamClient)(nil)

// NewUpstreamClient wires the origin base URL and an HTTP client.
func NewUpstreamClient(base string, client *http.Client) *UpstreamClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &UpstreamClient{base: strings.TrimSuffix(base, "/"), client: client}
}

// Fetch performs the request and captures the payload as a cache entry.
// Non-2xx responses count as fetch failures so error pages never enter a cache.
func (u *UpstreamClient) Fetch(ctx context.Context, method, path string) (ports.CacheEntry, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, u.base+path, nil)
	if err != nil {
		return ports.CacheEntry{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return ports.CacheEntry{}, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ports.CacheEntry{}, fmt.Errorf("upstream returned %s for %s", resp.Status, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ports.CacheEntry{}, fmt.Errorf("read %s: %w", path, err)
	}

	return ports.CacheEntry{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		CachedAt:    time.Now().UTC(),
	}, nil
}

// requestKey derives the store key from the request identity.
func requestKey(method, path string) string {
	return method + " " + path
}

func writeEntry(w http.ResponseWriter, entry ports.CacheEntry) {
	if entry.ContentType != "" {
		w.Header().Set("Content-Type", entry.ContentType)
	}
	_, _ = w.Write(entry.Body)
}
