package gdelt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"rivalwatch/internal/domain"
	"rivalwatch/internal/ports"
)

const (
	defaultEndpoint   = "https://api.gdeltproject.org/api/v2/doc/doc"
	defaultMaxRecords = 50

	// seendate comes back as a compact UTC stamp, e.g. 20250901T063000Z.
	seenDateLayout = "20060102T150405Z"
)

// Client queries the GDELT DOC 2.0 article-list API.
type Client struct {
	endpoint   string
	maxRecords int
	client     *http.Client
}

var _ ports.SearchClient = (*Client)(nil)

// NewClient wires an HTTP client; endpoint and record cap fall back to the
// public API defaults.
func NewClient(endpoint string, maxRecords int, client *http.Client) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{endpoint: endpoint, maxRecords: maxRecords, client: client}
}

type articleList struct {
	Articles []struct {
		Title            string `json:"title"`
		URL              string `json:"url"`
		SourceCommonName string `json:"sourceCommonName"`
		SeenDate         string `json:"seendate"`
	} `json:"articles"`
}

// Search runs one query and maps the article list to mentions. Timestamps
// that fail to parse are left zero so the recency filter drops them.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Mention, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("mode", "ArtList")
	params.Set("maxrecords", strconv.Itoa(c.maxRecords))
	params.Set("format", "json")
	params.Set("sort", "DateDesc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "rivalwatch/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gdelt returned %s", resp.Status)
	}

	var list articleList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode article list: %w", err)
	}

	mentions := make([]domain.Mention, 0, len(list.Articles))
	for _, art := range list.Articles {
		if art.URL == "" {
			continue
		}
		var seenAt time.Time
		if parsed, err := time.Parse(seenDateLayout, art.SeenDate); err == nil {
			seenAt = parsed
		}
		mentions = append(mentions, domain.Mention{
			Title:  art.Title,
			URL:    art.URL,
			Source: art.SourceCommonName,
			SeenAt: seenAt,
		})
	}

	return mentions, nil
}
