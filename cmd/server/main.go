package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/boardkin/internal/api"
	"github.com/dgallion1/boardkin/internal/config"
	"github.com/dgallion1/boardkin/internal/logging"
	"github.com/dgallion1/boardkin/internal/ner"
	"github.com/dgallion1/boardkin/internal/pipeline"
	"github.com/dgallion1/boardkin/internal/tables"
)

func main() {
	cfg := config.Load()

	log, logCloser := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFile)
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	params, err := config.LoadParams(cfg.ParamsFile)
	if err != nil {
		log.Error("invalid extraction parameters", "file", cfg.ParamsFile, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	var (
		recognizer ner.Recognizer
		nerClient  *ner.HTTPRecognizer
		nerStats   *ner.Stats
	)
	if cfg.NERURL != "" {
		nerClient = ner.NewHTTPRecognizer(ner.HTTPOptions{
			URL:         cfg.NERURL,
			APIKey:      cfg.NERAPIKey,
			Timeout:     cfg.NERTimeout,
			BatchSize:   cfg.NERBatchSize,
			Concurrency: cfg.NERConcurrency,
			RateLimit:   cfg.NERRateLimit,
			Log:         log,
		})
		recognizer = nerClient
		nerStats = nerClient.Stats()
	} else {
		log.Warn("NER_URL not set, using dictionary recognizer over board-member names")
	}

	// Initialize pipeline.
	p, err := pipeline.New(pipeline.Options{
		Params:            params,
		Extractor:         tables.NewTabulaExtractor(),
		Recognizer:        recognizer,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
		Log:               log,
	})
	if err != nil {
		log.Error("pipeline init failed", "error", err)
		os.Exit(1)
	}

	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, p, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, nerStats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()

		if nerClient != nil {
			nerClient.Close()
		}
	}()

	log.Info("starting boardkin", "port", cfg.Port, "params", cfg.ParamsFile, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
