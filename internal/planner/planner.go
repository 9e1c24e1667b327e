// Package planner is the application service that owns the plan
// collection. It routes user actions to the garden editor, keeps the
// collection consistent under concurrent callers, persists every applied
// change and exposes the derived views.
package planner

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"garden-planner/internal/catalog"
	"garden-planner/internal/clock"
	"garden-planner/internal/companion"
	"garden-planner/internal/garden"
	"garden-planner/internal/metrics"
	"garden-planner/internal/shopping"
)

// Bounds accepted for new and resized plans.
const (
	DefaultMaxGrid = 20
	MinCellSizeCm  = 10
	MaxCellSizeCm  = 100
	DefaultWidth   = 6
	DefaultHeight  = 6
)

var (
	ErrInvalidDimensions = errors.New("invalid plan dimensions")
	ErrInvalidCellSize   = errors.New("invalid cell size")
	ErrEmptyTitle        = errors.New("plan title must not be empty")
)

// Persister loads and saves the whole plan collection.
type Persister interface {
	LoadAll(ctx context.Context) ([]*garden.Plan, error)
	SaveAll(ctx context.Context, plans []*garden.Plan) error
}

// Deps are the collaborators of a Planner. Catalog and Persister are
// required.
type Deps struct {
	Catalog   *catalog.Catalog
	Persister Persister
	Clock     clock.Clock
	Logger    *zap.Logger
	Recorder  metrics.Recorder
	Pathway   garden.PathwayPolicy
	Locale    string
	MaxGrid   int
	NewID     func() string
}

// PlanSummary is the list view of a plan.
type PlanSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	GridCellSizeCm int       `json:"gridCellSizeCm"`
	Planted        int       `json:"planted"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PlanUpdate changes plan metadata; nil fields are left alone.
type PlanUpdate struct {
	Title          *string `json:"title,omitempty"`
	GridCellSizeCm *int    `json:"gridCellSizeCm,omitempty"`
}

// Planner owns the plan collection.
type Planner struct {
	catalog   *catalog.Catalog
	editor    *garden.Editor
	evaluator *companion.Evaluator
	summaries *shopping.Memo
	persister Persister
	logger    *zap.Logger
	recorder  metrics.Recorder
	clock     clock.Clock
	maxGrid   int
	newID     func() string

	mu    sync.RWMutex
	plans map[string]*garden.Plan
}

// New creates a Planner and loads the stored plans.
func New(ctx context.Context, deps Deps) (*Planner, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("planner requires a catalog")
	}
	if deps.Persister == nil {
		return nil, fmt.Errorf("planner requires a persister")
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MaxGrid <= 0 {
		deps.MaxGrid = DefaultMaxGrid
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	p := &Planner{
		catalog:   deps.Catalog,
		editor:    garden.NewEditor(deps.Catalog, deps.Clock, deps.Pathway),
		evaluator: companion.NewEvaluator(deps.Catalog),
		summaries: shopping.NewMemo(shopping.NewAggregator(deps.Catalog, deps.Locale)),
		persister: deps.Persister,
		logger:    deps.Logger,
		recorder:  deps.Recorder,
		clock:     deps.Clock,
		maxGrid:   deps.MaxGrid,
		newID:     deps.NewID,
		plans:     make(map[string]*garden.Plan),
	}

	loaded, err := deps.Persister.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}
	for _, plan := range loaded {
		if err := plan.Validate(nil); err != nil {
			p.logger.Warn("skipping invalid stored plan", zap.String("plan_id", planID(plan)), zap.Error(err))
			continue
		}
		p.plans[plan.ID] = plan
	}
	p.logger.Debug("plans loaded", zap.Int("count", len(p.plans)))
	return p, nil
}

// Catalog returns the vegetable catalog the planner edits against.
func (p *Planner) Catalog() *catalog.Catalog {
	return p.catalog
}

// PathwayPolicy returns the placement policy for pathway cells.
func (p *Planner) PathwayPolicy() garden.PathwayPolicy {
	return p.editor.Policy()
}

// MaxGrid returns the largest accepted width or height.
func (p *Planner) MaxGrid() int {
	return p.maxGrid
}

// GetPlan returns a copy of the plan with id.
func (p *Planner) GetPlan(id string) (*garden.Plan, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	plan, ok := p.plans[id]
	if !ok {
		return nil, false
	}
	return plan.Clone(), true
}

// ListPlans returns every plan, most recently updated first.
func (p *Planner) ListPlans() []PlanSummary {
	p.mu.RLock()
	out := make([]PlanSummary, 0, len(p.plans))
	for _, plan := range p.plans {
		out = append(out, summaryOf(plan))
	}
	p.mu.RUnlock()

	slices.SortFunc(out, func(a, b PlanSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// FindPlan resolves a plan by exact id, unique id prefix or exact title
// (case-insensitive).
func (p *Planner) FindPlan(ref string) (*garden.Plan, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	if plan, ok := p.GetPlan(ref); ok {
		return plan, true
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	var match *garden.Plan
	for _, plan := range p.plans {
		if strings.HasPrefix(plan.ID, ref) || strings.EqualFold(plan.Title, ref) {
			if match != nil {
				return nil, false
			}
			match = plan
		}
	}
	if match == nil {
		return nil, false
	}
	return match.Clone(), true
}

// AddPlan creates an empty plan. A zero cellSizeCm selects the default.
func (p *Planner) AddPlan(ctx context.Context, title string, width, height, cellSizeCm int) (*garden.Plan, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if err := p.checkDimensions(width, height); err != nil {
		return nil, err
	}
	if cellSizeCm == 0 {
		cellSizeCm = garden.DefaultCellSizeCm
	}
	if err := checkCellSize(cellSizeCm); err != nil {
		return nil, err
	}

	start := time.Now()
	plan := p.editor.NewPlan(p.newID(), title, width, height, cellSizeCm)

	p.mu.Lock()
	p.plans[plan.ID] = plan
	err := p.saveLocked(ctx)
	p.mu.Unlock()

	p.record(ctx, "add_plan", plan.ID, true, start)
	if err != nil {
		return plan.Clone(), err
	}
	p.logger.Info("plan created", zap.String("plan_id", plan.ID), zap.String("title", title),
		zap.Int("width", width), zap.Int("height", height), zap.Int("cell_size_cm", cellSizeCm))
	return plan.Clone(), nil
}

// UpdatePlan renames a plan and/or changes its cell size.
func (p *Planner) UpdatePlan(ctx context.Context, id string, u PlanUpdate) (*garden.Plan, error) {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if u.GridCellSizeCm != nil {
		if err := checkCellSize(*u.GridCellSizeCm); err != nil {
			return nil, err
		}
	}
	return p.mutate(ctx, "update_plan", id, func(plan *garden.Plan) *garden.Plan {
		if u.Title != nil {
			plan = p.editor.Rename(plan, strings.TrimSpace(*u.Title))
		}
		if u.GridCellSizeCm != nil {
			plan = p.editor.SetCellSize(plan, *u.GridCellSizeCm)
		}
		return plan
	})
}

// DeletePlan removes a plan. It reports whether the plan existed.
func (p *Planner) DeletePlan(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	p.mu.Lock()
	if _, ok := p.plans[id]; !ok {
		p.mu.Unlock()
		p.record(ctx, "delete_plan", id, false, start)
		return false, nil
	}
	delete(p.plans, id)
	err := p.saveLocked(ctx)
	p.mu.Unlock()

	p.summaries.Forget(id)
	p.record(ctx, "delete_plan", id, true, start)
	if err == nil {
		p.logger.Info("plan deleted", zap.String("plan_id", id))
	}
	return true, err
}

// DuplicatePlan copies a plan under a new id.
func (p *Planner) DuplicatePlan(ctx context.Context, id string) (*garden.Plan, error) {
	start := time.Now()
	p.mu.Lock()
	src, ok := p.plans[id]
	if !ok {
		p.mu.Unlock()
		p.record(ctx, "duplicate_plan", id, false, start)
		return nil, nil
	}
	dup := p.editor.Duplicate(src, p.newID())
	p.plans[dup.ID] = dup
	err := p.saveLocked(ctx)
	p.mu.Unlock()

	p.record(ctx, "duplicate_plan", dup.ID, true, start)
	if err == nil {
		p.logger.Info("plan duplicated", zap.String("plan_id", id), zap.String("copy_id", dup.ID))
	}
	return dup.Clone(), err
}

// Place puts a vegetable into a cell.
func (p *Planner) Place(ctx context.Context, planID, cellID, vegetableID string) (*garden.Plan, error) {
	return p.mutate(ctx, "place", planID, func(plan *garden.Plan) *garden.Plan {
		return p.editor.Place(plan, cellID, vegetableID)
	})
}

// Remove clears a cell.
func (p *Planner) Remove(ctx context.Context, planID, cellID string) (*garden.Plan, error) {
	return p.mutate(ctx, "remove", planID, func(plan *garden.Plan) *garden.Plan {
		return p.editor.Remove(plan, cellID)
	})
}

// Move swaps the occupants of two cells.
func (p *Planner) Move(ctx context.Context, planID, fromCellID, toCellID string) (*garden.Plan, error) {
	return p.mutate(ctx, "move", planID, func(plan *garden.Plan) *garden.Plan {
		return p.editor.Move(plan, fromCellID, toCellID)
	})
}

// ToggleCellType flips a cell between bed and pathway.
func (p *Planner) ToggleCellType(ctx context.Context, planID, cellID string) (*garden.Plan, error) {
	return p.mutate(ctx, "toggle", planID, func(plan *garden.Plan) *garden.Plan {
		return p.editor.ToggleCellType(plan, cellID)
	})
}

// Resize changes the grid dimensions.
func (p *Planner) Resize(ctx context.Context, planID string, width, height int) (*garden.Plan, error) {
	if err := p.checkDimensions(width, height); err != nil {
		return nil, err
	}
	return p.mutate(ctx, "resize", planID, func(plan *garden.Plan) *garden.Plan {
		return p.editor.Resize(plan, width, height)
	})
}

// Summarize derives the shopping summary of a plan.
func (p *Planner) Summarize(planID string) (*shopping.Summary, bool) {
	plan, ok := p.snapshot(planID)
	if !ok {
		return nil, false
	}
	s := p.summaries.Summarize(plan)
	return &s, true
}

// CompanionStatus reports the companion indicators of one cell.
func (p *Planner) CompanionStatus(planID, cellID string) (companion.Status, bool) {
	plan, ok := p.snapshot(planID)
	if !ok {
		return companion.Status{}, false
	}
	return p.evaluator.Status(plan, cellID), true
}

// CompanionStatuses reports the indicators of every occupied cell.
func (p *Planner) CompanionStatuses(planID string) (map[string]companion.Status, bool) {
	plan, ok := p.snapshot(planID)
	if !ok {
		return nil, false
	}
	return p.evaluator.StatusAll(plan), true
}

// CompanionNeighbors lists the good and bad companions in reach of a cell.
func (p *Planner) CompanionNeighbors(planID, cellID string) ([]companion.Neighbor, bool) {
	plan, ok := p.snapshot(planID)
	if !ok {
		return nil, false
	}
	return p.evaluator.Neighbors(plan, cellID), true
}

// Import adds plans from another source, replacing plans with the same
// id. Invalid plans are skipped and counted.
func (p *Planner) Import(ctx context.Context, plans []*garden.Plan) (imported, skipped int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, plan := range plans {
		if verr := plan.Validate(p.catalog); verr != nil {
			p.logger.Warn("skipping invalid plan", zap.String("plan_id", planID(plan)), zap.Error(verr))
			skipped++
			continue
		}
		p.plans[plan.ID] = plan.Clone()
		p.summaries.Forget(plan.ID)
		imported++
	}
	if imported == 0 {
		return 0, skipped, nil
	}
	return imported, skipped, p.saveLocked(ctx)
}

// Plans returns copies of every plan ordered by creation time.
func (p *Planner) Plans() []*garden.Plan {
	p.mu.RLock()
	out := make([]*garden.Plan, 0, len(p.plans))
	for _, plan := range p.plans {
		out = append(out, plan.Clone())
	}
	p.mu.RUnlock()
	sortByCreation(out)
	return out
}

// snapshot returns the stored plan pointer. Stored plans are never
// mutated in place, so readers may use it without holding the lock.
func (p *Planner) snapshot(id string) (*garden.Plan, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	plan, ok := p.plans[id]
	return plan, ok
}

// mutate applies op to the stored plan and persists the collection when
// op returned a new snapshot. Unknown plans yield (nil, nil).
func (p *Planner) mutate(ctx context.Context, name, planID string, op func(*garden.Plan) *garden.Plan) (*garden.Plan, error) {
	start := time.Now()

	p.mu.Lock()
	current, ok := p.plans[planID]
	if !ok {
		p.mu.Unlock()
		p.record(ctx, name, planID, false, start)
		return nil, nil
	}
	next := op(current)
	applied := next != current
	var err error
	if applied {
		p.plans[planID] = next
		err = p.saveLocked(ctx)
	}
	p.mu.Unlock()

	p.record(ctx, name, planID, applied, start)
	if applied {
		p.logger.Debug("plan updated", zap.String("op", name), zap.String("plan_id", planID))
	}
	return next.Clone(), err
}

// saveLocked persists the collection. The in-memory state stays applied
// when the save fails. Callers hold p.mu.
func (p *Planner) saveLocked(ctx context.Context) error {
	plans := make([]*garden.Plan, 0, len(p.plans))
	for _, plan := range p.plans {
		plans = append(plans, plan)
	}
	sortByCreation(plans)
	if err := p.persister.SaveAll(ctx, plans); err != nil {
		p.logger.Error("failed to persist plans", zap.Error(err))
		return fmt.Errorf("failed to persist plans: %w", err)
	}
	return nil
}

func (p *Planner) record(ctx context.Context, op, planID string, applied bool, start time.Time) {
	if p.recorder == nil {
		return
	}
	err := p.recorder.RecordOperation(ctx, metrics.OperationMetric{
		Operation: op,
		PlanID:    planID,
		Applied:   applied,
		Latency:   time.Since(start),
		Timestamp: p.clock.Now(),
	})
	if err != nil {
		p.logger.Warn("failed to record operation metric", zap.String("op", op), zap.Error(err))
	}
}

func (p *Planner) checkDimensions(width, height int) error {
	if width < 1 || height < 1 || width > p.maxGrid || height > p.maxGrid {
		return fmt.Errorf("%w: %dx%d (each side must be 1..%d)", ErrInvalidDimensions, width, height, p.maxGrid)
	}
	return nil
}

func checkCellSize(cm int) error {
	if cm < MinCellSizeCm || cm > MaxCellSizeCm {
		return fmt.Errorf("%w: %d cm (must be %d..%d)", ErrInvalidCellSize, cm, MinCellSizeCm, MaxCellSizeCm)
	}
	return nil
}

func summaryOf(plan *garden.Plan) PlanSummary {
	return PlanSummary{
		ID:             plan.ID,
		Title:          plan.Title,
		Width:          plan.Width,
		Height:         plan.Height,
		GridCellSizeCm: plan.GridCellSizeCm,
		Planted:        len(plan.OccupiedCells()),
		CreatedAt:      plan.CreatedAt,
		UpdatedAt:      plan.UpdatedAt,
	}
}

func sortByCreation(plans []*garden.Plan) {
	slices.SortFunc(plans, func(a, b *garden.Plan) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func planID(plan *garden.Plan) string {
	if plan == nil {
		return ""
	}
	return plan.ID
}
