// Package app wires configuration, storage, metrics and the planner into
// the use cases shared by the CLI, the HTTP API and the Telegram bot.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"garden-planner/internal/catalog"
	"garden-planner/internal/clock"
	"garden-planner/internal/config"
	"garden-planner/internal/database"
	"garden-planner/internal/garden"
	"garden-planner/internal/metrics"
	"garden-planner/internal/planner"
	"garden-planner/internal/storage"
)

// App holds the application's dependencies.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	clock    clock.Clock
	db       *database.DB
	catalog  *catalog.Catalog
	metrics  *metrics.Store
	planRepo *planner.PlanRepository
	planFile *storage.PlanStore
	planner  *planner.Planner
}

// Option customizes New.
type Option func(*options)

type options struct {
	clock clock.Clock
	newID func() string
}

// WithClock overrides the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

// WithIDGenerator overrides plan id generation.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// New opens the database, loads the catalog and the stored plans.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{clock: clock.Real{}}
	for _, opt := range opts {
		opt(&o)
	}

	pathway, err := garden.ParsePathwayPolicy(cfg.PathwayPlacement)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	db, err := database.NewDB(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	planFile, err := storage.NewPlanStore(cfg.PlansFile)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize plan file: %w", err)
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		clock:    o.clock,
		db:       db,
		catalog:  cat,
		metrics:  metrics.NewStore(db.SQL, o.clock),
		planRepo: planner.NewPlanRepository(db.SQL),
		planFile: planFile,
	}

	var persister planner.Persister = a.planRepo
	if cfg.Storage == config.StorageFile {
		persister = planFile
	}

	a.planner, err = planner.New(ctx, planner.Deps{
		Catalog:   cat,
		Persister: persister,
		Clock:     o.clock,
		Logger:    logger.Named("planner"),
		Recorder:  a.metrics,
		Pathway:   pathway,
		Locale:    cfg.Locale,
		MaxGrid:   cfg.MaxGrid,
		NewID:     o.newID,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("app initialized",
		zap.String("storage", cfg.Storage),
		zap.Int("vegetables", cat.Len()),
		zap.String("pathway_placement", string(pathway)))
	return a, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.db.Close()
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Planner returns the plan service.
func (a *App) Planner() *planner.Planner { return a.planner }

// Catalog returns the vegetable catalog.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// Metrics returns the metrics store.
func (a *App) Metrics() *metrics.Store { return a.metrics }

// DB returns the shared database handle.
func (a *App) DB() *database.DB { return a.db }

// SysHealth reports runtime statistics, store sizes and plan counts.
func (a *App) SysHealth() metrics.SysHealth {
	stats := metrics.GardenStats{Vegetables: a.planner.Catalog().Len()}
	for _, s := range a.planner.ListPlans() {
		stats.Plans++
		stats.PlantedCells += s.Planted
	}
	return metrics.GetSysHealth(metrics.DataPaths{
		Dir:       a.cfg.DataDir,
		Database:  a.cfg.DBPath,
		PlansFile: a.cfg.PlansFile,
		Catalog:   a.cfg.CatalogPath,
	}, stats)
}
