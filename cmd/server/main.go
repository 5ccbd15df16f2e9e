package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kxiao02/pptweaver/internal/api"
	"github.com/kxiao02/pptweaver/internal/assist"
	"github.com/kxiao02/pptweaver/internal/config"
	"github.com/kxiao02/pptweaver/internal/induct"
	"github.com/kxiao02/pptweaver/internal/pipeline"
	"github.com/kxiao02/pptweaver/internal/schemacache"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schema cache.
	cache, err := schemacache.New(cfg.SchemaCacheDir, cfg.SchemaCacheSize)
	if err != nil {
		log.Error("schema cache init failed", "error", err)
		os.Exit(1)
	}

	// Optional model-backed classification assist.
	var assistClient *assist.Client
	var inducerAssist induct.Assist
	if cfg.AnthropicAPIKey != "" {
		assistClient = assist.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AssistTimeout)
		inducerAssist = assistClient
		log.Info("classification assist enabled", "model", cfg.AnthropicModel)
	} else {
		log.Info("classification assist disabled, heuristics only")
	}

	inductCfg := induct.DefaultConfig()
	inductCfg.Classify.BackgroundRatio = cfg.BackgroundRatio
	inductCfg.Classify.DecorativeRatio = cfg.DecorativeRatio
	inductCfg.CapacityMargin = cfg.CapacityMargin
	inductCfg.AssistParallel = cfg.AssistParallel
	inducer := induct.New(inductCfg, inducerAssist, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, cache, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, cache, inducer, assistClient, log, cfg)

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

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if assistClient != nil {
			assistClient.Close()
		}
	}()

	log.Info("starting pptweaver", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
