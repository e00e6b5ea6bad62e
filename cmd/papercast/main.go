package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PaperCast/internal/app"
	"PaperCast/internal/config"
	"PaperCast/internal/logging"
)

func main() {
	var (
		serve       = flag.Bool("serve", false, "Run as an HTTP server.")
		generate    = flag.Bool("generate", false, "Run the pipeline once, write the report MP3, then exit.")
		prompt      = flag.String("prompt", "", "User info for relevance filtering and summaries.")
		maxArticles = flag.Int("max-articles", 5, "Maximum articles to process in the pipeline.")
		newOnly     = flag.Bool("new-only", false, "Only process articles newer than cached ones.")
		sourceURL   = flag.String("source-url", "", "Listing page URL override.")
		tier        = flag.String("llm-level", "", "Model quality level: low, medium or high.")
		output      = flag.String("output", "final_output.mp3", "Output path for the generated MP3.")
		port        = flag.String("port", "", "HTTP port override for serve mode.")
	)
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Server.Port = *port
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if *generate {
		ctx := context.Background()
		err := application.Generate(ctx, app.GenerateOptions{
			Prompt:      *prompt,
			MaxArticles: *maxArticles,
			NewOnly:     *newOnly,
			SourceURL:   *sourceURL,
			Tier:        *tier,
			Output:      *output,
		})
		if err != nil {
			logger.Error("generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if !*serve {
		logger.Info("no mode specified, defaulting to serve")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Serve(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case <-quit:
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := application.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}
}
