package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"garden-planner/internal/export"
	"garden-planner/internal/ghost"
)

// PublishPlan posts the plan's grid and summary to the configured Ghost
// blog, as a draft unless live is set. An unknown plan yields (nil, nil).
func (a *App) PublishPlan(ctx context.Context, planID string, live bool) (*ghost.Post, error) {
	if err := a.cfg.RequireGhost(); err != nil {
		return nil, err
	}
	plan, ok := a.planner.GetPlan(planID)
	if !ok {
		return nil, nil
	}
	statuses, _ := a.planner.CompanionStatuses(planID)
	summary, ok := a.planner.Summarize(planID)
	if !ok {
		return nil, nil
	}

	html, err := export.PlanHTMLFragment(plan, a.catalog, statuses, *summary)
	if err != nil {
		return nil, err
	}
	client := ghost.NewClient(a.cfg.GhostURL, a.cfg.GhostAdminKey, a.clock)
	post, err := client.CreatePost(ctx, plan.Title, string(html), live)
	if err != nil {
		return nil, fmt.Errorf("failed to publish plan %s: %w", planID, err)
	}
	a.logger.Info("plan published", zap.String("plan_id", planID), zap.String("post_id", post.ID), zap.String("status", post.Status))
	return post, nil
}
