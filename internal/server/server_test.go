package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"rivalwatch/internal/infrastructure/kvstore"
)

func newOrigin(t *testing.T, up *atomic.Bool, dataBody *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		switch {
		case r.URL.Path == "/data/index.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(dataBody.Load().(string)))
		case r.URL.Path == "/index.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>app</html>"))
		case r.URL.Path == "/offline.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>offline</html>"))
		case r.URL.Path == "/api/health":
			_, _ = w.Write([]byte("ok"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) (*Server, *atomic.Bool, *atomic.Value) {
	t.Helper()

	up := &atomic.Bool{}
	up.Store(true)
	dataBody := &atomic.Value{}
	dataBody.Store(`{"latest":"./data/daily/2025-09-01.json"}`)

	origin := newOrigin(t, up, dataBody)

	srv, err := New(Config{
		Upstream:     origin.URL,
		DataPrefix:   "/data/",
		ShellVersion: "v1.0.0",
		ShellAssets:  []string{"/index.html", "/offline.html"},
		OfflinePath:  "/offline.html",
		Store:        kvstore.NewMemoryStore(),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, up, dataBody
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNewRequiresUpstreamAndStore(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Store: kvstore.NewMemoryStore()}); err == nil {
		t.Fatalf("missing upstream must be rejected")
	}
	if _, err := New(Config{Upstream: "http://origin.local"}); err == nil {
		t.Fatalf("missing store must be rejected")
	}
}

func TestDataPathSurvivesOriginOutage(t *testing.T) {
	t.Parallel()

	srv, up, _ := newTestServer(t)

	rec := doGet(t, srv.Handler(), "/data/index.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("first fetch: %d", rec.Code)
	}
	srv.fresh.Wait()

	up.Store(false)

	rec = doGet(t, srv.Handler(), "/data/index.json")
	srv.fresh.Wait()
	if rec.Code != http.StatusOK {
		t.Fatalf("cached data must serve during an outage, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "2025-09-01") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestDataMissDuringOutageServesOfflineDocument(t *testing.T) {
	t.Parallel()

	srv, up, _ := newTestServer(t)

	if err := srv.shell.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	up.Store(false)

	rec := doGet(t, srv.Handler(), "/data/daily/2025-08-31.json")
	if rec.Body.String() != "<html>offline</html>" {
		t.Fatalf("uncached data path during outage must fall back to the offline document, got %q", rec.Body.String())
	}
}

func TestShellServesCacheFirstAfterInstall(t *testing.T) {
	t.Parallel()

	srv, up, _ := newTestServer(t)
	if err := srv.shell.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	up.Store(false)

	rec := doGet(t, srv.Handler(), "/")
	if rec.Body.String() != "<html>app</html>" {
		t.Fatalf("installed shell must serve offline, got %q", rec.Body.String())
	}
}

func TestPassthroughBypassesCaches(t *testing.T) {
	t.Parallel()

	srv, up, _ := newTestServer(t)

	rec := doGet(t, srv.Handler(), "/api/health")
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected passthrough body: %q", rec.Body.String())
	}

	up.Store(false)
	rec = doGet(t, srv.Handler(), "/api/health")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("passthrough must not cache, got %d", rec.Code)
	}
}

func TestEventsStreamDeliversNewData(t *testing.T) {
	t.Parallel()

	srv, _, dataBody := newTestServer(t)

	web := httptest.NewServer(srv.Handler())
	defer web.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, web.URL+"/events", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open event stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", ct)
	}

	// Give the handler a moment to register its subscription.
	time.Sleep(100 * time.Millisecond)

	// Prime the cache, change the origin payload, then trigger a revalidation.
	doGet(t, srv.Handler(), "/data/index.json")
	srv.fresh.Wait()
	dataBody.Store(`{"latest":"./data/daily/2025-09-02.json"}`)
	doGet(t, srv.Handler(), "/data/index.json")
	srv.fresh.Wait()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	if !strings.Contains(line, "NEW_DATA") {
		t.Fatalf("expected NEW_DATA event, got %q", line)
	}
}
