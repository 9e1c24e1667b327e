package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"garden-planner/internal/catalog"
	"garden-planner/internal/clipper"
	"garden-planner/internal/llm"
	"garden-planner/internal/metrics"
	"garden-planner/internal/shared"
)

// MetaRecorder stores LLM usage.
type MetaRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

var _ MetaRecorder = (*metrics.Store)(nil)

// URLClipper extracts a vegetable from a web page.
type URLClipper interface {
	ClipURL(ctx context.Context, url string) (clipper.Result, error)
}

// ClipAndRecord clips url into the user catalog and records the token
// usage of the extraction, also when it failed after calling the model.
func ClipAndRecord(ctx context.Context, c URLClipper, rec MetaRecorder, logger *zap.Logger, url string) (catalog.Vegetable, error) {
	res, err := c.ClipURL(ctx, url)
	if !res.Meta.Empty() {
		if rerr := rec.RecordMeta(ctx, res.Meta); rerr != nil {
			logger.Warn("failed to record clipper usage", zap.Error(rerr))
		}
	}
	if err != nil {
		return catalog.Vegetable{}, err
	}
	logger.Info("vegetable clipped", zap.String("id", res.Vegetable.ID), zap.String("url", url))
	return res.Vegetable, nil
}

// ClipVegetable clips url with the configured LLM provider and appends the
// result to the user catalog file. The new entry is available to plans on
// the next start.
func (a *App) ClipVegetable(ctx context.Context, url string) (catalog.Vegetable, error) {
	if err := a.cfg.RequireLLM(); err != nil {
		return catalog.Vegetable{}, err
	}
	gen, err := llm.NewTextGenerator(ctx, a.cfg)
	if err != nil {
		return catalog.Vegetable{}, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	defer func() {
		if err := llm.CloseIfCloser(gen); err != nil {
			a.logger.Warn("failed to close LLM client", zap.Error(err))
		}
	}()

	c := clipper.NewClipper(gen, catalog.UserFile(a.cfg.CatalogPath), a.catalog)
	return ClipAndRecord(ctx, c, a.metrics, a.logger.Named("clipper"), url)
}
