// Package app assembles the crescentwatch daemon: configuration, the
// ephemeris-backed visibility engine, the run archive, metrics, and the
// configured controllers, with signal-driven graceful shutdown.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/crescentwatch/internal/archive"
	"github.com/chrissnell/crescentwatch/internal/log"
	"github.com/chrissnell/crescentwatch/internal/managers"
	"github.com/chrissnell/crescentwatch/internal/observability"
	"github.com/chrissnell/crescentwatch/pkg/config"
	"github.com/chrissnell/crescentwatch/pkg/crescent"
	"github.com/chrissnell/crescentwatch/pkg/ephem"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %v", err)
	}

	engine := crescent.NewEngine(ephem.NewProvider())

	store, err := openArchive(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	metrics, err := observability.NewEngineCollector(nil)
	if err != nil {
		return fmt.Errorf("error registering metrics: %v", err)
	}

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, a.configProvider, managers.Deps{
		Engine:  engine,
		Store:   store,
		Metrics: metrics,
	}, a.logger)
	if err != nil {
		return err
	}
	err = cm.StartControllers()
	if err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// openArchive opens the configured run archive backend, or none.
func openArchive(ctx context.Context, cfg *config.ArchiveData) (archive.Store, error) {
	if cfg == nil {
		return nil, nil
	}
	switch {
	case cfg.Postgres != nil && cfg.Postgres.ConnectionString != "":
		return archive.NewPostgresStore(ctx, cfg.Postgres.ConnectionString)
	case cfg.SQLite != nil && cfg.SQLite.Path != "":
		return archive.NewSQLiteStore(ctx, cfg.SQLite.Path)
	}
	return nil, nil
}
