package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rivalwatch/internal/domain"
	"rivalwatch/internal/ports"
)

const maxFeedBytes = 4 << 20

// Fetcher downloads and parses RSS 2.0 and Atom feeds into mentions.
type Fetcher struct {
	client *http.Client
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client with a sane default timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Fetcher{client: client}
}

// envelope covers both feed dialects: RSS items live under channel, Atom
// entries sit at the document root.
type envelope struct {
	Channel *channel    `xml:"channel"`
	Entries []atomEntry `xml:"entry"`
}

type channel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Date    string `xml:"date"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// Fetch downloads one feed and returns its items as mentions. Items whose
// timestamp cannot be parsed keep a zero SeenAt; the recency filter treats
// those as stale.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]domain.Mention, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "rivalwatch/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var doc envelope
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	source := feedHost(feedURL)

	var mentions []domain.Mention
	if doc.Channel != nil {
		for _, item := range doc.Channel.Items {
			link := strings.TrimSpace(item.Link)
			if link == "" {
				continue
			}
			when := item.PubDate
			if when == "" {
				when = item.Date
			}
			mentions = append(mentions, domain.Mention{
				Title:  cleanTitle(item.Title),
				URL:    link,
				Source: source,
				SeenAt: parseWhen(when),
			})
		}
	}

	for _, entry := range doc.Entries {
		link := entryLink(entry.Links)
		if link == "" {
			continue
		}
		when := entry.Published
		if when == "" {
			when = entry.Updated
		}
		mentions = append(mentions, domain.Mention{
			Title:  cleanTitle(entry.Title),
			URL:    link,
			Source: source,
			SeenAt: parseWhen(when),
		})
	}

	return mentions, nil
}

// cleanTitle strips embedded markup and collapses whitespace; feed titles
// frequently carry HTML fragments.
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	if !strings.Contains(title, "<") && !strings.Contains(title, "&") {
		return title
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(title))
	if err != nil {
		return title
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

var whenLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

func parseWhen(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range whenLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func entryLink(links []atomLink) string {
	for _, link := range links {
		if link.Rel == "" || link.Rel == "alternate" {
			return strings.TrimSpace(link.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

func feedHost(feedURL string) string {
	parsed, err := url.Parse(feedURL)
	if err != nil || parsed.Host == "" {
		return feedURL
	}
	return parsed.Host
}
