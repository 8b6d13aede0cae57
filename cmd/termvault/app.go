package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termvault/termvault/internal/config"
	"github.com/termvault/termvault/internal/database"
	"github.com/termvault/termvault/internal/logger"
	"github.com/termvault/termvault/internal/metrics"
	"github.com/termvault/termvault/internal/services"
	"github.com/termvault/termvault/internal/usecase"
)

// app holds everything a command needs to talk to the store.
type app struct {
	settings config.Settings
	actor    string
	log      *logger.Logger
	metrics  *metrics.Metrics
	db       *database.Context
	svc      *services.Services
	catalog  *usecase.Catalog
}

func openApp(cmd *cobra.Command) (*app, error) {
	settings, err := config.Load(config.GetSettingsPath())
	if err != nil {
		return nil, err
	}

	level := settings.LogLevel
	if globalFlags.logLevel != "" {
		level = globalFlags.logLevel
	}
	log := logger.NewLogger(logger.Config{
		Level:  level,
		Pretty: true,
		Output: cmd.ErrOrStderr(),
	})

	dbCtx, err := database.Open(database.Options{
		Path:          globalFlags.dbPath,
		BusyTimeoutMs: settings.BusyTimeoutMs,
		Logger:        log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	actor := settings.Actor
	if globalFlags.actor != "" {
		actor = globalFlags.actor
	}

	m := metrics.NewMetrics()
	svc := services.New(dbCtx, services.Options{
		Logger:        log,
		Metrics:       m,
		DefaultLocale: settings.DefaultLocale,
	})
	return &app{
		settings: settings,
		actor:    actor,
		log:      log,
		metrics:  m,
		db:       dbCtx,
		svc:      svc,
		catalog:  usecase.NewCatalog(svc, actor),
	}, nil
}

func (a *app) Close() {
	if err := database.CloseDatabase(a.db); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close database")
	}
}
