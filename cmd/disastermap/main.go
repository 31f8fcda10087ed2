package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bdeakin/disastermap/internal/config"
	"github.com/bdeakin/disastermap/internal/engine"
	"github.com/bdeakin/disastermap/internal/grouping"
	"github.com/bdeakin/disastermap/internal/logger"
	"github.com/bdeakin/disastermap/internal/source"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Best-effort env bootstrap; a missing .env is fine.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging with level support
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	// Open the data source
	src, err := source.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open data source: %v", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Error("Failed to close data source: %v", err)
		}
	}()

	// Initialize the clustering engine
	eng, err := engine.New(cfg.Map, src, nil)
	if err != nil {
		logger.Fatal("Failed to initialize engine: %v", err)
	}

	// Optional name-grouping enrichment
	var enricher *grouping.Enricher
	if cfg.Enrichment.Enabled {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			logger.Fatal("OPENAI_API_KEY is required when enrichment is enabled")
		}
		store, err := grouping.OpenStore(cfg.Enrichment.CachePath)
		if err != nil {
			logger.Fatal("Failed to open grouping cache: %v", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close grouping cache: %v", err)
			}
		}()
		enricher = grouping.NewEnricher(store, openai.NewClient(apiKey), cfg.Enrichment.Model)
		logger.Info("Name-grouping enrichment enabled (model: %s)", cfg.Enrichment.Model)
	} else {
		logger.Debug("Name-grouping enrichment disabled")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	router := newRouter(eng, src, enricher)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error: %v", err)
		}
	}()

	logger.Info("Serving on %s (settle window: %v, grid: %.2f/%.2f, threshold: %d)",
		cfg.Server.Addr,
		cfg.Map.SettleWindow,
		cfg.Map.GridLargeDegrees,
		cfg.Map.GridSmallDegrees,
		cfg.Map.MetroThreshold,
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed: %v", err)
	}
	<-ctx.Done()
	logger.Info("Shutdown complete")
}
