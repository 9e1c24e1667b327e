package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"garden-planner/internal/config"
	"garden-planner/internal/garden"
	"garden-planner/internal/storage"
)

// ErrNotSQLite is returned by MigratePlansFromFile when the app does not
// store plans in SQLite.
var ErrNotSQLite = errors.New("plan migration requires GARDEN_STORAGE=sqlite")

// MigrationResult counts what a plan migration or import did.
type MigrationResult struct {
	Found    int `json:"found"`
	Existing int `json:"existing"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// MigratePlansFromFile copies plans from the JSON plans file into the
// SQLite database. Plans already in the database are left untouched.
func (a *App) MigratePlansFromFile(ctx context.Context) (MigrationResult, error) {
	if a.cfg.Storage != config.StorageSQLite {
		return MigrationResult{}, ErrNotSQLite
	}
	if !a.planFile.Exists() {
		a.logger.Info("no plans file to migrate", zap.String("path", a.planFile.Path()))
		return MigrationResult{}, nil
	}
	return a.importFrom(ctx, a.planFile, false)
}

// ImportPlans loads plans from a JSON plans file at path. With replace set,
// plans with an id already in the collection are overwritten.
func (a *App) ImportPlans(ctx context.Context, path string, replace bool) (MigrationResult, error) {
	src, err := storage.NewPlanStore(path)
	if err != nil {
		return MigrationResult{}, err
	}
	if !src.Exists() {
		return MigrationResult{}, fmt.Errorf("plans file %s does not exist", path)
	}
	return a.importFrom(ctx, src, replace)
}

// ExportPlans writes every plan to a JSON plans file at path and returns
// how many were written.
func (a *App) ExportPlans(ctx context.Context, path string) (int, error) {
	dst, err := storage.NewPlanStore(path)
	if err != nil {
		return 0, err
	}
	plans := a.planner.Plans()
	if err := dst.SaveAll(ctx, plans); err != nil {
		return 0, err
	}
	return len(plans), nil
}

func (a *App) importFrom(ctx context.Context, src *storage.PlanStore, replace bool) (MigrationResult, error) {
	plans, err := src.LoadAll(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to read plans from %s: %w", src.Path(), err)
	}

	res := MigrationResult{Found: len(plans)}
	var fresh []*garden.Plan
	for _, plan := range plans {
		if plan == nil {
			a.logger.Warn("skipping empty plan entry", zap.String("source", src.Path()))
			res.Skipped++
			continue
		}
		if _, exists := a.planner.GetPlan(plan.ID); exists && !replace {
			a.logger.Debug("plan already present, skipping", zap.String("plan_id", plan.ID))
			res.Existing++
			continue
		}
		fresh = append(fresh, plan)
	}

	imported, skipped, err := a.planner.Import(ctx, fresh)
	res.Imported = imported
	res.Skipped += skipped
	if err != nil {
		return res, err
	}
	a.logger.Info("plans imported",
		zap.String("source", src.Path()),
		zap.Int("imported", res.Imported),
		zap.Int("existing", res.Existing),
		zap.Int("skipped", res.Skipped))
	return res, nil
}
