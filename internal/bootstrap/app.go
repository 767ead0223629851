// Package bootstrap handles application initialization and lifecycle
// management for the price tracker.
//
// The bootstrap process follows these phases:
//   - Phase 1: Config & Logger - Load configuration and create logger
//   - Phase 2: Database - Connect to PostgreSQL, migrate, create repositories
//   - Phase 3: Services - Create parser registry, fetch clients, tracker,
//     alert engine and scheduler
//   - Phase 4: Server - Create the HTTP server
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/pricetracker/internal/api"
	"github.com/jonesrussell/pricetracker/internal/config"
	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/metrics"
	"github.com/jonesrussell/pricetracker/internal/scheduler"
	"github.com/jonesrussell/pricetracker/internal/tracker"
)

// App holds the wired application components.
type App struct {
	Config    *config.Config
	Logger    logger.Interface
	DB        *sqlx.DB
	Repos     *Repositories
	Metrics   *metrics.Metrics
	Tracker   *tracker.Tracker
	Scheduler *scheduler.Scheduler
	Server    *api.Server
}

// CommandDeps holds the config and logger every command starts from.
type CommandDeps struct {
	Config *config.Config
	Logger logger.Interface
}

// NewCommandDeps loads configuration and creates the logger.
// config.InitializeViper must have run first.
func NewCommandDeps() (*CommandDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &CommandDeps{Config: cfg, Logger: log}, nil
}

// NewApp wires the full application.
func NewApp(ctx context.Context) (*App, error) {
	deps, err := NewCommandDeps()
	if err != nil {
		return nil, err
	}

	db, repos, err := SetupDatabase(ctx, deps.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	services := SetupServices(deps, repos)
	server := SetupHTTPServer(deps, repos, services)

	return &App{
		Config:    deps.Config,
		Logger:    deps.Logger,
		DB:        db,
		Repos:     repos,
		Metrics:   services.Metrics,
		Tracker:   services.Tracker,
		Scheduler: services.Scheduler,
		Server:    server,
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
