package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rivalwatch/internal/config"
	"rivalwatch/internal/digest"
	"rivalwatch/internal/infrastructure/feed"
	"rivalwatch/internal/infrastructure/gdelt"
	"rivalwatch/internal/infrastructure/kvstore"
	"rivalwatch/internal/infrastructure/llm"
	"rivalwatch/internal/infrastructure/scheduler"
	"rivalwatch/internal/infrastructure/store"
	"rivalwatch/internal/logging"
	"rivalwatch/internal/ports"
	"rivalwatch/internal/server"
	"rivalwatch/internal/source"
	"rivalwatch/internal/usecase"
)

// Application wires configuration into the collection and serving commands.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Collect runs the pipeline once, or on the configured interval when loop is
// set. Configuration problems are fatal before anything is written.
func (a *Application) Collect(ctx context.Context, loop bool) error {
	competitors, err := config.LoadCompetitors(a.cfg.Collector.CompetitorsPath)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	profile, err := config.LoadProfile(a.cfg.Collector.ProfilePath)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	pipeline := a.buildPipeline(profile)

	runTimeout := a.cfg.Collector.RunTimeoutDuration()
	run := func(runCtx context.Context, trigger time.Time) {
		if runTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, runTimeout)
			defer cancel()
		}
		if _, err := pipeline.Run(runCtx, competitors); err != nil {
			a.logger.Error("collection run failed", "error", err)
		}
	}

	if !loop {
		if runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runTimeout)
			defer cancel()
		}
		_, err := pipeline.Run(ctx, competitors)
		return err
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.IntervalDuration())
	runLoop := usecase.NewLoop(driver, run)
	if err := runLoop.Start(ctx); err != nil {
		return fmt.Errorf("start collection loop: %w", err)
	}
	<-ctx.Done()
	return runLoop.Stop(context.Background())
}

func (a *Application) buildPipeline(profile []byte) *usecase.Pipeline {
	searchClient := gdelt.NewClient(a.cfg.Collector.SearchEndpoint, a.cfg.Collector.MaxRecords, nil)
	feedFetcher := feed.NewFetcher(nil)
	collector := source.NewCollector(
		searchClient,
		feedFetcher,
		a.cfg.Collector.GeoScope,
		a.logger.With("component", "source"),
	)

	var model ports.Summarizer
	if a.cfg.LLM.Provider == "openai" && a.cfg.LLM.APIKey != "" {
		summarizer, err := llm.New(a.cfg.LLM, profile)
		if err != nil {
			a.logger.Warn("model summarizer unavailable, using rule-based variant", "error", err)
		} else {
			model = summarizer
		}
	}

	return usecase.NewPipeline(usecase.PipelineDeps{
		Collector:   collector,
		Summarizer:  model,
		Fallback:    digest.RuleBasedSummarizer{},
		Store:       store.NewFileStore(a.cfg.Collector.DataDir),
		MaxInFlight: a.cfg.Collector.MaxConcurrent,
		Logger:      a.logger.With("component", "pipeline"),
	})
}

// Serve starts the offline-serving cache layer in front of the configured
// upstream origin.
func (a *Application) Serve(ctx context.Context) error {
	var byteStore ports.ByteStore
	if a.cfg.Server.CacheDir == "" {
		byteStore = kvstore.NewMemoryStore()
	} else {
		sqliteStore, err := kvstore.OpenSQLite(a.cfg.Server.CacheDir)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		defer sqliteStore.Close()
		byteStore = sqliteStore
	}

	srv, err := server.New(server.Config{
		Addr:         a.cfg.Server.Addr,
		Upstream:     a.cfg.Server.Upstream,
		DataPrefix:   a.cfg.Server.DataPrefix,
		ShellVersion: a.cfg.Server.Shell.Version,
		ShellAssets:  a.cfg.Server.Shell.Assets,
		OfflinePath:  a.cfg.Server.Shell.OfflinePath,
		Store:        byteStore,
		Logger:       a.logger.With("component", "server"),
	})
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	return srv.Run(ctx)
}
