package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labellens/backend/config"
	httpDelivery "github.com/labellens/backend/internal/delivery/http"
	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/infrastructure/cache"
	"github.com/labellens/backend/internal/infrastructure/openfoodfacts"
	"github.com/labellens/backend/internal/infrastructure/oracle"
	"github.com/labellens/backend/internal/infrastructure/vision"
	"github.com/labellens/backend/internal/pkg/logger"
	"github.com/labellens/backend/internal/usecase"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting LabelLens Backend",
		"version", version,
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"cache", cfg.Cache.Type,
		"oracle", cfg.Oracle.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	cacheRepo, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to init cache", "error", err)
	}
	defer closeCache()

	analysisOracle, err := oracle.New(oracle.Config{
		Provider:          cfg.Oracle.Provider,
		APIKey:            cfg.Oracle.APIKey,
		BaseURL:           cfg.Oracle.BaseURL,
		Model:             cfg.Oracle.Model,
		Timeout:           cfg.Oracle.Timeout,
		MaxTokens:         cfg.Oracle.MaxTokens,
		Temperature:       cfg.Oracle.Temperature,
		RequestsPerMinute: cfg.Oracle.RequestsPerMinute,
	}, log)
	if err != nil {
		log.Fatal("Failed to init oracle", "error", err)
	}
	if analysisOracle == nil {
		log.Warn("No oracle configured - every analysis will be degraded")
	}

	barcodeClient := openfoodfacts.NewClient(cfg.Barcode.BaseURL, cfg.Barcode.UserAgent, log)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		barcodeClient.SetDebug(true)
		log.Info("Barcode client debug mode enabled")
	}

	var ocr domain.OCRProvider
	if cfg.Vision.Enabled {
		provider, err := vision.NewProvider(ctx, cfg.Vision.CredentialsFile, log)
		if err != nil {
			log.Fatal("Failed to init vision OCR", "error", err)
		}
		defer provider.Close()
		ocr = provider
	}

	// Initialize usecase layer
	analysisService := usecase.NewAnalysisService(analysisOracle, log, usecase.AnalysisServiceConfig{
		OracleTimeout: cfg.Oracle.Timeout,
	})
	scanService := usecase.NewScanService(analysisService, barcodeClient, ocr, cacheRepo, log, usecase.ScanServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	})
	comparisonService := usecase.NewComparisonService()

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(analysisService, scanService, comparisonService, log)
	router := httpDelivery.SetupRouter(cfg, handler, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
}

// newCache builds the configured cache and its cleanup func
func newCache(ctx context.Context, cfg *config.Config) (domain.CacheRepository, func(), error) {
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisCache, func() { _ = redisCache.Close() }, nil
	default:
		return cache.NewMemoryCache(cfg.Cache.TTL), func() {}, nil
	}
}
