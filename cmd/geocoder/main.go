package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/geocoding-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/geocoding-service/internal/adapter/kafka"
	"github.com/couchcryptid/geocoding-service/internal/adapter/nominatim"
	"github.com/couchcryptid/geocoding-service/internal/config"
	"github.com/couchcryptid/geocoding-service/internal/domain"
	"github.com/couchcryptid/geocoding-service/internal/observability"
	"github.com/couchcryptid/geocoding-service/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client, err := nominatim.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent, metrics, logger)
	if err != nil {
		logger.Error("failed to create geocoding client", "error", err)
		os.Exit(1)
	}

	// Caching is opt-in via GEOCODER_CACHE_SIZE.
	var geocoder domain.Geocoder = client
	if cfg.GeocoderCacheSize > 0 {
		geocoder = nominatim.NewCachedGeocoder(client, cfg.GeocoderCacheSize, metrics)
	}
	logger.Info("geocoder configured",
		"base_url", cfg.GeocoderBaseURL,
		"timeout", cfg.GeocoderRequestTimeout,
		"cache_size", cfg.GeocoderCacheSize,
	)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(geocoder, cfg.GeocoderRequestTimeout, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, geocoder, cfg.GeocoderRequestTimeout, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start geocoding pipeline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
