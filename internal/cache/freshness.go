package cache

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"rivalwatch/internal/ports"
)

// DataGroup is the store group holding data-category responses. It survives
// shell version rollovers.
const DataGroup = "data-cache"

const defaultRevalidateTimeout = 30 * time.Second

// FreshnessCache serves data resources stale-while-revalidate: a cached
// payload goes out immediately and a detached background fetch refreshes the
// store for the next request. A response, once written, is never retroactively
// invalidated; freshness travels through the notification channel only.
type FreshnessCache struct {
	store             ports.ByteStore
	fetcher           Fetcher
	hub               ports.Broadcaster
	offline           http.Handler
	logger            *slog.Logger
	revalidateTimeout time.Duration

	inflight sync.WaitGroup
}

// NewFreshnessCache wires the byte store, origin fetcher, notification hub and
// the terminal offline fallback.
func NewFreshnessCache(store ports.ByteStore, fetcher Fetcher, hub ports.Broadcaster, offline http.Handler, logger *slog.Logger) *FreshnessCache {
	return &FreshnessCache{
		store:             store,
		fetcher:           fetcher,
		hub:               hub,
		offline:           offline,
		logger:            logger,
		revalidateTimeout: defaultRevalidateTimeout,
	}
}

func (f *FreshnessCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := requestKey(r.Method, r.URL.Path)

	entry, ok, err := f.store.Get(r.Context(), DataGroup, key)
	if err != nil {
		f.warn("cache read failed", "key", key, "error", err)
		ok = false
	}

	if ok {
		f.inflight.Add(1)
		go f.revalidate(r.Method, r.URL.Path, key, entry.Body)
		writeEntry(w, entry)
		return
	}

	fetched, err := f.fetcher.Fetch(r.Context(), r.Method, r.URL.Path)
	if err != nil {
		f.serveOffline(w, r)
		return
	}
	if err := f.store.Put(r.Context(), DataGroup, key, fetched); err != nil {
		f.warn("cache write failed", "key", key, "error", err)
	}
	writeEntry(w, fetched)
}

// revalidate runs detached from the request lifetime. It mutates only the
// backing store and the hub: the already-written response is never touched,
// and a fetch failure leaves the stored value as it was. The notification
// fires only when the payload actually changed.
func (f *FreshnessCache) revalidate(method, path, key string, previous []byte) {
	defer f.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), f.revalidateTimeout)
	defer cancel()

	fetched, err := f.fetcher.Fetch(ctx, method, path)
	if err != nil {
		f.debug("revalidation failed, keeping cached value", "key", key, "error", err)
		return
	}

	if err := f.store.Put(ctx, DataGroup, key, fetched); err != nil {
		f.warn("revalidation write failed", "key", key, "error", err)
		return
	}

	if f.hub != nil && !bytes.Equal(fetched.Body, previous) {
		f.hub.Broadcast(NewDataNotification())
	}
}

func (f *FreshnessCache) serveOffline(w http.ResponseWriter, r *http.Request) {
	if f.offline != nil {
		f.offline.ServeHTTP(w, r)
		return
	}
	http.Error(w, "content unavailable", http.StatusServiceUnavailable)
}

// Wait blocks until in-flight revalidations finish; used at shutdown and by
// tests.
func (f *FreshnessCache) Wait() {
	f.inflight.Wait()
}

func (f *FreshnessCache) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

func (f *FreshnessCache) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
