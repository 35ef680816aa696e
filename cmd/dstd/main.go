package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/dst-index-etl/internal/adapter/csvstore"
	httpadapter "github.com/couchcryptid/dst-index-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/dst-index-etl/internal/adapter/kafka"
	"github.com/couchcryptid/dst-index-etl/internal/adapter/wdc"
	"github.com/couchcryptid/dst-index-etl/internal/config"
	"github.com/couchcryptid/dst-index-etl/internal/domain"
	"github.com/couchcryptid/dst-index-etl/internal/observability"
	"github.com/couchcryptid/dst-index-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	baseURL := cfg.WDCBaseURL
	if baseURL == "" {
		baseURL = wdc.DefaultBaseURL
	}
	client := wdc.NewClient(baseURL, cfg.WDCTimeout, logger, metrics)
	fetcher := wdc.NewCachedFetcher(client, cfg.WDCCacheSize, clock, metrics)
	source := wdc.NewSource(fetcher, logger)

	detector, err := pipeline.NewDetector(cfg.Criterion, cfg.MergeGapDays, cfg.AbsoluteValue)
	if err != nil {
		slog.Error("failed to build detector", "error", err)
		os.Exit(1)
	}

	// Kafka publishing is feature-flagged via KAFKA_ENABLED.
	var sink pipeline.ReportSink
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	// CSV archiving is enabled by setting DATA_DIR.
	var archiver pipeline.Archiver
	if cfg.DataDir != "" {
		a, err := csvstore.NewArchiver(csvstore.New(domain.DefaultSchema()), cfg.DataDir, logger)
		if err != nil {
			logger.Error("failed to create archive directory", "error", err)
			os.Exit(1)
		}
		archiver = a
		logger.Info("csv archiving enabled", "dir", cfg.DataDir)
	} else {
		logger.Info("csv archiving disabled")
	}

	p := pipeline.New(source, detector, sink, archiver, logger, metrics, pipeline.Options{
		PollInterval:   cfg.PollInterval,
		LookbackMonths: cfg.LookbackMonths,
		Clock:          clock,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start detection pipeline.
	go func() {
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
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
