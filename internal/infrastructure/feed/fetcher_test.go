package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>Acme &lt;b&gt;announces&lt;/b&gt; acquisition</title>
      <link>https://news.example/acme</link>
      <pubDate>Mon, 01 Sep 2025 06:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Undated item</title>
      <link>https://news.example/undated</link>
      <pubDate>sometime last week</pubDate>
    </item>
    <item>
      <title>No link item</title>
    </item>
  </channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Example</title>
  <entry>
    <title>Rival pilot programme</title>
    <link rel="alternate" href="https://blog.example/pilot"/>
    <published>2025-09-01T06:00:00Z</published>
  </entry>
</feed>`

func serveBody(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRSS(t *testing.T) {
	t.Parallel()

	srv := serveBody(t, rssFixture)
	mentions, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(mentions) != 2 {
		t.Fatalf("expected 2 mentions (link-less item skipped), got %d", len(mentions))
	}

	first := mentions[0]
	if first.Title != "Acme announces acquisition" {
		t.Fatalf("markup must be stripped from title, got %q", first.Title)
	}
	if first.URL != "https://news.example/acme" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	want := time.Date(2025, 9, 1, 6, 0, 0, 0, time.UTC)
	if !first.SeenAt.Equal(want) {
		t.Fatalf("unexpected timestamp: %v", first.SeenAt)
	}

	if !mentions[1].SeenAt.IsZero() {
		t.Fatalf("unparseable pubDate must stay zero, got %v", mentions[1].SeenAt)
	}
}

func TestFetchAtom(t *testing.T) {
	t.Parallel()

	srv := serveBody(t, atomFixture)
	mentions, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(mentions) != 1 {
		t.Fatalf("expected 1 mention, got %d", len(mentions))
	}
	if mentions[0].URL != "https://blog.example/pilot" {
		t.Fatalf("unexpected url: %s", mentions[0].URL)
	}
	if mentions[0].SeenAt.IsZero() {
		t.Fatalf("published timestamp must parse")
	}
}

func TestFetchNonOKStatusIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	if _, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestFetchMalformedFeedIsError(t *testing.T) {
	t.Parallel()

	srv := serveBody(t, "{not xml at all")
	if _, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for malformed feed")
	}
}

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"plain title", "plain title"},
		{"  padded  ", "padded"},
		{"<p>wrapped <em>markup</em></p>", "wrapped markup"},
		{"A &amp; B", "A & B"},
	}
	for _, tc := range cases {
		if got := cleanTitle(tc.in); got != tc.want {
			t.Fatalf("cleanTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
