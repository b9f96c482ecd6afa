package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"rivalwatch/internal/ports"
)

// ShellCache serves static application resources cache-first from a versioned
// resource group: cached copy, else network, else the static offline document.
type ShellCache struct {
	store       ports.ByteStore
	fetcher     Fetcher
	version     string
	assets      []string
	offlinePath string
	logger      *slog.Logger
}

// NewShellCache pins the resource-set version, its asset list and the offline
// fallback document path.
func NewShellCache(store ports.ByteStore, fetcher Fetcher, version string, assets []string, offlinePath string, logger *slog.Logger) *ShellCache {
	if offlinePath == "" {
		offlinePath = "/offline.html"
	}
	return &ShellCache{
		store:       store,
		fetcher:     fetcher,
		version:     version,
		assets:      assets,
		offlinePath: offlinePath,
		logger:      logger,
	}
}

func (s *ShellCache) group() string {
	return "app-" + s.version
}

// Assets returns the configured shell resource paths.
func (s *ShellCache) Assets() []string {
	return s.assets
}

// Install fetches the complete shell asset set into this version's group. The
// new version is only usable once every asset landed; a failed install leaves
// the previous version's group intact.
func (s *ShellCache) Install(ctx context.Context) error {
	for _, asset := range s.assets {
		entry, err := s.fetcher.Fetch(ctx, http.MethodGet, asset)
		if err != nil {
			return fmt.Errorf("install %s: %w", asset, err)
		}
		if err := s.store.Put(ctx, s.group(), requestKey(http.MethodGet, asset), entry); err != nil {
			return fmt.Errorf("store %s: %w", asset, err)
		}
	}
	return nil
}

// Activate deletes every cache group that is neither the current shell version
// nor the live data group, so stale resource-set versions disappear in one
// sweep instead of being partially overwritten.
func (s *ShellCache) Activate(ctx context.Context) error {
	groups, err := s.store.Groups(ctx)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}

	for _, g := range groups {
		if g == s.group() || g == DataGroup {
			continue
		}
		if err := s.store.DeleteGroup(ctx, g); err != nil {
			return fmt.Errorf("drop group %s: %w", g, err)
		}
	}
	return nil
}

func (s *ShellCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}
	key := requestKey(r.Method, path)

	entry, ok, err := s.store.Get(r.Context(), s.group(), key)
	if err != nil {
		s.warn("shell cache read failed", "key", key, "error", err)
		ok = false
	}
	if ok {
		writeEntry(w, entry)
		return
	}

	// Runtime misses are served from network but not written back; the
	// versioned install set stays the only writer of shell groups.
	fetched, err := s.fetcher.Fetch(r.Context(), r.Method, path)
	if err == nil {
		writeEntry(w, fetched)
		return
	}

	s.ServeOffline(w, r)
}

// ServeOffline renders the static offline document, or an explicit 503 when
// even that is missing. Callers never get a silent empty success.
func (s *ShellCache) ServeOffline(w http.ResponseWriter, r *http.Request) {
	entry, ok, err := s.store.Get(r.Context(), s.group(), requestKey(http.MethodGet, s.offlinePath))
	if err == nil && ok {
		writeEntry(w, entry)
		return
	}
	http.Error(w, "content unavailable", http.StatusServiceUnavailable)
}

func (s *ShellCache) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
