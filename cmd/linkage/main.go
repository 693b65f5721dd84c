package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	csvadapter "github.com/couchcryptid/geo-linkage-etl/internal/adapter/csv"
	httpadapter "github.com/couchcryptid/geo-linkage-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/geo-linkage-etl/internal/adapter/kafka"
	"github.com/couchcryptid/geo-linkage-etl/internal/config"
	"github.com/couchcryptid/geo-linkage-etl/internal/domain"
	"github.com/couchcryptid/geo-linkage-etl/internal/linkage"
	"github.com/couchcryptid/geo-linkage-etl/internal/observability"
	"github.com/couchcryptid/geo-linkage-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("linkage failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reg, err := config.LoadRegistry(cfg.DatasetsFile)
	if err != nil {
		return err
	}

	loaders := pipeline.Loaders{csvadapter.NewWriter(cfg.OutputPath, cfg.GridResolution, logger)}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	}

	p := pipeline.New(reg,
		csvadapter.NewReader(cfg.DataDir, logger, metrics),
		pipeline.NewTransformer(cfg.GridResolution, logger, metrics),
		loaders,
		linkage.Matcher{TimeScale: cfg.TimeScale, Epoch: domain.Epoch},
		logger, metrics, cfg.JoinWorkers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	_, runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("linkage run failed", "error", runErr)
	}

	// Keep serving status and metrics until asked to stop.
	if srv != nil && runErr == nil {
		<-ctx.Done()
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}
