// Package app wires configuration to components and owns process lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"PaperCast/internal/config"
	"PaperCast/internal/infrastructure/cache"
	"PaperCast/internal/infrastructure/command"
	"PaperCast/internal/infrastructure/convert"
	"PaperCast/internal/infrastructure/download"
	"PaperCast/internal/infrastructure/llm"
	"PaperCast/internal/infrastructure/parser"
	"PaperCast/internal/infrastructure/scheduler"
	"PaperCast/internal/infrastructure/telegram"
	"PaperCast/internal/infrastructure/tts"
	"PaperCast/internal/logging"
	"PaperCast/internal/ports"
	"PaperCast/internal/server"
	"PaperCast/internal/usecase"
)

// Application bundles the runnable pieces built from one Config.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	synth    ports.Synthesizer
	notifier ports.Notifier
	server   *server.Server
	daily    *usecase.DailyRun
}

// New builds the full object graph.
func New(cfg config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	snapshots, articles, err := buildStores(cfg.Cache)
	if err != nil {
		return nil, err
	}

	source := parser.NewArxivListing(nil, snapshots, cfg.Listing.URL,
		logging.Component(logger, "listing"))

	chat := llm.New(cfg.LLM, cfg.LLM.DefaultTier, "", "", logging.Component(logger, "llm"))
	newModel := func(endpoint, model, tier string) ports.ChatModel {
		if tier == "" {
			tier = cfg.LLM.DefaultTier
		}
		return llm.New(cfg.LLM, tier, endpoint, model, logging.Component(logger, "llm"))
	}

	runner := command.NewExecRunner()
	converter := convert.NewPDFToText(runner, cfg.Converter.Command, cfg.Converter.Args)
	downloader := download.NewHTTPDownloader(nil)
	synth := tts.NewCommandSynthesizer(runner, cfg.TTS, logging.Component(logger, "tts"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Articles: articles,
		Chat:     chat,
		NewModel: newModel,
		Filter: usecase.NewFilter(cfg.Pipeline.BatchSize, cfg.Pipeline.FilterWorkers,
			logging.Component(logger, "filter")),
		Reranker: usecase.NewReranker(logging.Component(logger, "rerank")),
		Loader: usecase.NewLoader(articles, downloader, converter,
			logging.Component(logger, "loader")),
		Summarizer:     usecase.NewSummarizer(logging.Component(logger, "summarizer")),
		Notifier:       notifier,
		Logger:         logging.Component(logger, "pipeline"),
		MaxArticles:    cfg.Pipeline.MaxArticles,
		SummaryWorkers: cfg.Pipeline.SummaryWorkers,
	})

	if err := os.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	handler := server.NewHandler(pipeline, synth, cfg.Cache.Dir, logging.Component(logger, "http"))
	srv := server.New(cfg.Server, handler, logging.Component(logger, "http"))

	var daily *usecase.DailyRun
	if cfg.Scheduler.Enabled {
		driver := scheduler.NewTickerScheduler(cfg.Scheduler.Interval.Std())
		daily = usecase.NewDailyRun(driver, pipeline, synth, notifier,
			cfg.Scheduler.Prompt, cfg.Scheduler.MaxArticles, cfg.Scheduler.Output,
			logging.Component(logger, "scheduler"))
	}

	return &Application{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline,
		synth:    synth,
		notifier: notifier,
		server:   srv,
		daily:    daily,
	}, nil
}

// GenerateOptions parameterize a one-shot CLI run.
type GenerateOptions struct {
	Prompt      string
	MaxArticles int
	NewOnly     bool
	SourceURL   string
	Tier        string
	Output      string
}

// Generate runs the pipeline once and renders the report to opts.Output.
func (a *Application) Generate(ctx context.Context, opts GenerateOptions) error {
	report, err := a.pipeline.Process(ctx, usecase.Request{
		UserInfo:    opts.Prompt,
		MaxArticles: opts.MaxArticles,
		NewOnly:     opts.NewOnly,
		SourceURL:   opts.SourceURL,
		Tier:        opts.Tier,
	})
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := a.synth.Synthesize(ctx, report, opts.Output); err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	a.logger.Info("report generated", "output", opts.Output)
	return nil
}

// Serve starts the HTTP server (and the daily run when enabled) and blocks
// until the server stops.
func (a *Application) Serve(ctx context.Context) error {
	if a.daily != nil {
		if err := a.daily.Start(ctx); err != nil {
			return fmt.Errorf("start daily run: %w", err)
		}
		defer func() { _ = a.daily.Stop(ctx) }()
	}
	return a.server.Start()
}

// Shutdown drains the HTTP server.
func (a *Application) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

func buildStores(cfg config.CacheConfig) (ports.Store, ports.Store, error) {
	switch cfg.Backend {
	case "", "fs":
		snapshots, err := cache.NewFileStore(cfg.Dir, ".json")
		if err != nil {
			return nil, nil, err
		}
		articles, err := cache.NewFileStore(filepath.Join(cfg.Dir, "articles"), ".txt")
		if err != nil {
			return nil, nil, err
		}
		return snapshots, articles, nil
	case "memory":
		return cache.NewMemoryStore(), cache.NewMemoryStore(), nil
	case "sqlite":
		db, err := cache.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewSQLiteStore(db, "snapshots"), cache.NewSQLiteStore(db, "articles"), nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
