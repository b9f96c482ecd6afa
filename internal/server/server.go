package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rivalwatch/internal/cache"
	"rivalwatch/internal/ports"
)

// Config wires the offline-serving process.
type Config struct {
	Addr         string
	Upstream     string
	DataPrefix   string
	ShellVersion string
	ShellAssets  []string
	OfflinePath  string
	Store        ports.ByteStore
	Logger       *slog.Logger
}

// Server hosts the request-routing cache layer and the client notification
// feed in front of the published digest origin.
type Server struct {
	cfg     Config
	hub     *cache.Hub
	shell   *cache.ShellCache
	fresh   *cache.FreshnessCache
	handler http.Handler
	logger  *slog.Logger
}

// New builds the serving stack: upstream fetcher, notification hub, the two
// caches and the category router.
func New(cfg Config) (*Server, error) {
	if cfg.Upstream == "" {
		return nil, fmt.Errorf("server: upstream origin is not configured")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("server: byte store is not configured")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	fetcher := cache.NewUpstreamClient(cfg.Upstream, nil)
	hub := cache.NewHub()

	shell := cache.NewShellCache(
		cfg.Store,
		fetcher,
		cfg.ShellVersion,
		cfg.ShellAssets,
		cfg.OfflinePath,
		componentLogger(cfg.Logger, "cache.shell"),
	)
	fresh := cache.NewFreshnessCache(
		cfg.Store,
		fetcher,
		hub,
		http.HandlerFunc(shell.ServeOffline),
		componentLogger(cfg.Logger, "cache.freshness"),
	)
	router := cache.NewRouter(cfg.DataPrefix, cfg.ShellAssets, fresh, shell, cache.NewPassthrough(fetcher))

	s := &Server{
		cfg:    cfg,
		hub:    hub,
		shell:  shell,
		fresh:  fresh,
		logger: cfg.Logger,
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Get("/events", s.handleEvents)
	mux.Handle("/*", router)
	s.handler = mux

	return s, nil
}

// Handler exposes the full serving handler; used by tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run installs and activates the current shell version, then serves until the
// context is cancelled. A failed install keeps serving from whatever versions
// are already cached rather than activating a partial set.
func (s *Server) Run(ctx context.Context) error {
	if err := s.shell.Install(ctx); err != nil {
		s.warn("shell install incomplete, keeping previous versions", "error", err)
	} else if err := s.shell.Activate(ctx); err != nil {
		s.warn("shell activation failed", "error", err)
	}

	httpServer := &http.Server{Addr: s.cfg.Addr, Handler: s.handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.info("serving", "addr", s.cfg.Addr, "upstream", s.cfg.Upstream)
	err := httpServer.ListenAndServe()
	s.fresh.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// handleEvents streams NEW_DATA notifications to the client as server-sent
// events until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := s.hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-events:
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With("component", component)
}

func (s *Server) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Server) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
