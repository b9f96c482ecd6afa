package gdelt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const fixture = `{
  "articles": [
    {"title": "Acme announces acquisition", "url": "https://news.example/1", "sourceCommonName": "news.example", "seendate": "20250901T060000Z"},
    {"title": "Broken timestamp", "url": "https://news.example/2", "sourceCommonName": "news.example", "seendate": "not-a-date"},
    {"title": "No url", "url": "", "sourceCommonName": "news.example", "seendate": "20250901T060000Z"}
  ]
}`

func TestSearchMapsArticles(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		if r.URL.Query().Get("mode") != "ArtList" {
			t.Errorf("expected mode=ArtList, got %s", r.URL.Query().Get("mode"))
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("expected format=json, got %s", r.URL.Query().Get("format"))
		}
		if r.URL.Query().Get("maxrecords") != "25" {
			t.Errorf("expected maxrecords=25, got %s", r.URL.Query().Get("maxrecords"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 25, srv.Client())
	mentions, err := client.Search(context.Background(), `("Acme") AND (scope)`)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotQuery != `("Acme") AND (scope)` {
		t.Fatalf("query not forwarded: %s", gotQuery)
	}

	if len(mentions) != 2 {
		t.Fatalf("expected 2 mentions (url-less entry skipped), got %d", len(mentions))
	}

	first := mentions[0]
	if first.Title != "Acme announces acquisition" || first.URL != "https://news.example/1" {
		t.Fatalf("unexpected first mention: %+v", first)
	}
	if first.SeenAt.IsZero() {
		t.Fatalf("seendate must parse: %+v", first)
	}
	if got := first.SeenAt.UTC().Format("2006-01-02 15:04"); got != "2025-09-01 06:00" {
		t.Fatalf("unexpected seen time: %s", got)
	}

	if !mentions[1].SeenAt.IsZero() {
		t.Fatalf("unparseable seendate must stay zero, got %v", mentions[1].SeenAt)
	}
}

func TestSearchNonOKStatusIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0, srv.Client())
	if _, err := client.Search(context.Background(), "q"); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestSearchMalformedBodyIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0, srv.Client())
	if _, err := client.Search(context.Background(), "q"); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}
