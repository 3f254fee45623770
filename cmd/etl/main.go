package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/verdemapa/climate-etl-service/internal/adapter/earthengine"
	"github.com/verdemapa/climate-etl-service/internal/adapter/httpapi"
	"github.com/verdemapa/climate-etl-service/internal/adapter/openmeteo"
	"github.com/verdemapa/climate-etl-service/internal/config"
	"github.com/verdemapa/climate-etl-service/internal/download"
	"github.com/verdemapa/climate-etl-service/internal/extract"
	"github.com/verdemapa/climate-etl-service/internal/merge"
	"github.com/verdemapa/climate-etl-service/internal/observability"
	"github.com/verdemapa/climate-etl-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	metrics := observability.NewMetrics()
	parquet := store.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The sampling session is established once at startup and threaded into
	// the engine. Without credentials the extract endpoint is disabled rather
	// than failing every request mid-run.
	var extractor httpapi.Extractor
	if cfg.EarthEngine.HasCredentials() {
		session, err := earthengine.Authenticate(ctx, cfg.EarthEngine.BaseURL, earthengine.Credentials{
			KeyJSON: cfg.EarthEngine.KeyJSON,
			KeyPath: cfg.EarthEngine.KeyPath,
		}, &http.Client{Timeout: cfg.EarthEngine.Timeout}, logger)
		if err != nil {
			logger.Error("sampling service authentication failed", "error", err)
			os.Exit(1)
		}
		sampler := earthengine.NewClient(session, cfg.EarthEngine.BaseURL, cfg.EarthEngine.Timeout, logger)
		extractor = extract.New(sampler, parquet, logger, metrics, extract.Options{
			ChunkSize:      cfg.Extract.ChunkSize,
			Workers:        cfg.Extract.Workers,
			AttemptTimeout: cfg.Extract.AttemptTimeout,
			MaxRetries:     cfg.Extract.MaxRetries,
		})
		logger.Info("extraction engine enabled",
			"chunk_size", cfg.Extract.ChunkSize, "workers", cfg.Extract.Workers)
	} else {
		logger.Warn("no sampling service credentials, extract endpoint disabled")
	}

	forecast := openmeteo.NewClient(cfg.OpenMeteo.BaseURL, cfg.OpenMeteo.Timeout, logger)
	downloader := download.New(forecast, parquet, logger, metrics, clockwork.NewRealClock(), cfg.OpenMeteo.Timezone)
	processor := merge.New(parquet, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.Deps{
		Extractor:    extractor,
		Downloader:   downloader,
		Processor:    processor,
		PastDays:     cfg.OpenMeteo.PastDays,
		ForecastDays: cfg.OpenMeteo.ForecastDays,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
