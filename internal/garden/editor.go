package garden

import (
	"fmt"
	"strings"

	"garden-planner/internal/clock"
)

// PathwayPolicy decides whether Place and Move may put a vegetable on a
// pathway cell.
type PathwayPolicy string

const (
	// PathwayAllow leaves bed-only routing to the caller.
	PathwayAllow PathwayPolicy = "allow"
	// PathwayReject turns pathway targets into no-ops.
	PathwayReject PathwayPolicy = "reject"
)

// ParsePathwayPolicy parses "allow" or "reject"; empty means reject.
func ParsePathwayPolicy(s string) (PathwayPolicy, error) {
	switch PathwayPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PathwayReject:
		return PathwayReject, nil
	case PathwayAllow:
		return PathwayAllow, nil
	default:
		return "", fmt.Errorf("unknown pathway placement policy %q (want allow or reject)", s)
	}
}

// VegetableLookup is the slice of the catalog the editor needs.
type VegetableLookup interface {
	Has(id string) bool
}

// Editor applies invariant-preserving mutations to plans.
type Editor struct {
	vegetables VegetableLookup
	clock      clock.Clock
	policy     PathwayPolicy
}

// NewEditor creates an Editor.
func NewEditor(vegetables VegetableLookup, clk clock.Clock, policy PathwayPolicy) *Editor {
	if clk == nil {
		clk = clock.Real{}
	}
	if policy == "" {
		policy = PathwayReject
	}
	return &Editor{vegetables: vegetables, clock: clk, policy: policy}
}

// Policy returns the pathway placement policy in effect.
func (e *Editor) Policy() PathwayPolicy {
	return e.policy
}

// apply runs fn on a clone and returns it when fn reports a change;
// otherwise p itself is returned.
func (e *Editor) apply(p *Plan, fn func(next *Plan) bool) *Plan {
	if p == nil {
		return nil
	}
	next := p.Clone()
	if !fn(next) {
		return p
	}
	next.UpdatedAt = e.clock.Now()
	return next
}

// Place puts vegetableID into the cell, overwriting any occupant.
func (e *Editor) Place(p *Plan, cellID, vegetableID string) *Plan {
	if !e.vegetables.Has(vegetableID) {
		return p
	}
	return e.apply(p, func(next *Plan) bool {
		i := next.indexOf(cellID)
		if i < 0 {
			return false
		}
		if next.Cells[i].Type == CellPathway && e.policy == PathwayReject {
			return false
		}
		next.Cells[i].Content = vegetableID
		return true
	})
}

// Remove clears the cell's occupant.
func (e *Editor) Remove(p *Plan, cellID string) *Plan {
	return e.apply(p, func(next *Plan) bool {
		i := next.indexOf(cellID)
		if i < 0 || !next.Cells[i].Occupied() {
			return false
		}
		next.Cells[i].Content = ""
		return true
	})
}

// Move swaps the occupants of two cells. Nothing happens when the source
// is empty.
func (e *Editor) Move(p *Plan, fromCellID, toCellID string) *Plan {
	return e.apply(p, func(next *Plan) bool {
		from, to := next.indexOf(fromCellID), next.indexOf(toCellID)
		if from < 0 || to < 0 || from == to || !next.Cells[from].Occupied() {
			return false
		}
		if e.policy == PathwayReject && next.Cells[to].Type == CellPathway {
			return false
		}
		next.Cells[from].Content, next.Cells[to].Content = next.Cells[to].Content, next.Cells[from].Content
		return true
	})
}

// ToggleCellType flips bed and pathway; a cell becoming a pathway loses
// its occupant.
func (e *Editor) ToggleCellType(p *Plan, cellID string) *Plan {
	return e.apply(p, func(next *Plan) bool {
		i := next.indexOf(cellID)
		if i < 0 {
			return false
		}
		c := &next.Cells[i]
		if c.Type == CellPathway {
			c.Type = CellBed
		} else {
			c.Type = CellPathway
			c.Content = ""
		}
		return true
	})
}

// Resize rebuilds the grid as width x height. Cells at coordinates kept by
// the new rectangle retain their state. Non-positive dimensions are a
// no-op.
func (e *Editor) Resize(p *Plan, width, height int) *Plan {
	if width <= 0 || height <= 0 {
		return p
	}
	return e.apply(p, func(next *Plan) bool {
		if next.Width == width && next.Height == height {
			return false
		}
		keep := make(map[[2]int]Cell, len(next.Cells))
		for _, c := range next.Cells {
			keep[[2]int{c.X, c.Y}] = c
		}
		next.Width, next.Height = width, height
		next.Cells = newCells(width, height, keep)
		return true
	})
}

// Rename sets the plan title.
func (e *Editor) Rename(p *Plan, title string) *Plan {
	return e.apply(p, func(next *Plan) bool {
		if next.Title == title {
			return false
		}
		next.Title = title
		return true
	})
}

// SetCellSize changes the physical cell edge. Non-positive sizes are a
// no-op.
func (e *Editor) SetCellSize(p *Plan, cellSizeCm int) *Plan {
	return e.apply(p, func(next *Plan) bool {
		if cellSizeCm <= 0 || next.GridCellSizeCm == cellSizeCm {
			return false
		}
		next.GridCellSizeCm = cellSizeCm
		return true
	})
}

// Duplicate copies p under newID with a "(copy)" title and fresh
// timestamps.
func (e *Editor) Duplicate(p *Plan, newID string) *Plan {
	if p == nil {
		return nil
	}
	now := e.clock.Now()
	dup := p.Clone()
	dup.ID = newID
	dup.Title = p.Title + " (copy)"
	dup.CreatedAt = now
	dup.UpdatedAt = now
	return dup
}

// NewPlan creates an empty plan stamped with the editor's clock.
func (e *Editor) NewPlan(id, title string, width, height, cellSizeCm int) *Plan {
	return NewPlan(id, title, width, height, cellSizeCm, e.clock.Now())
}
