package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/damon-houk/exchange-rate-tracker/internal/application/service"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/api"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/config"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/db"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/logger"
)

// app holds the wired components shared by every command
type app struct {
	cfg        *config.Config
	logger     *logger.JSONLogger
	ingestion  *service.IngestionService
	reporting  *service.ReportingService
	closeStore func() error
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.debug {
		level = logger.DebugLevel
	}
	log := logger.NewJSONLogger(nil, level)
	logger.SetDefaultLogger(log)
	log.Debug("Configuration loaded", map[string]interface{}{
		"store_backend": cfg.StoreBackend,
		"table":         cfg.TableName,
		"log_level":     log.Level(),
	})

	store, closeStore, err := db.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate store: %w", err)
	}

	source := api.NewRateSourceClient(cfg.SourceURL, &http.Client{Timeout: cfg.SourceTimeout}, log.WithField("component", "rate_source"))

	return &app{
		cfg:        cfg,
		logger:     log,
		ingestion:  service.NewIngestionService(source, store, log.WithField("component", "ingestion")),
		reporting:  service.NewReportingService(source, store, log.WithField("component", "reporting")),
		closeStore: closeStore,
	}, nil
}

func (a *app) Close() {
	if err := a.closeStore(); err != nil {
		a.logger.Error("Error closing rate store", map[string]interface{}{"error": err.Error()})
	}
	_ = a.logger.Sync()
}
