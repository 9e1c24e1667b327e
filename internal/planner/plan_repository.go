package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"garden-planner/internal/garden"
	"garden-planner/internal/planner/plan_db"
)

// PlanRepository is a database-backed Persister.
type PlanRepository struct {
	queries *plan_db.Queries
	db      *sql.DB
}

var _ Persister = (*PlanRepository)(nil)

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{
		queries: plan_db.New(d),
		db:      d,
	}
}

// LoadAll returns every stored plan ordered by creation time.
func (r *PlanRepository) LoadAll(ctx context.Context) ([]*garden.Plan, error) {
	rows, err := r.queries.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]*garden.Plan, 0, len(rows))
	for _, row := range rows {
		var p garden.Plan
		if err := json.Unmarshal([]byte(row.Data), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan %s: %w", row.ID, err)
		}
		plans = append(plans, &p)
	}
	return plans, nil
}

// SaveAll replaces the stored collection with plans in one transaction.
func (r *PlanRepository) SaveAll(ctx context.Context, plans []*garden.Plan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteAllPlans(ctx); err != nil {
		return fmt.Errorf("failed to clear plans: %w", err)
	}
	for _, p := range plans {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal plan %s: %w", p.ID, err)
		}
		err = q.InsertPlan(ctx, plan_db.InsertPlanParams{
			ID:        p.ID,
			Title:     p.Title,
			Data:      string(data),
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to insert plan %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plans: %w", err)
	}
	return nil
}

// Count returns the number of stored plans.
func (r *PlanRepository) Count(ctx context.Context) (int, error) {
	n, err := r.queries.CountPlans(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count plans: %w", err)
	}
	return int(n), nil
}
