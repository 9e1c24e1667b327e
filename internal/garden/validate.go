package garden

import (
	"errors"
	"fmt"
)

// ErrInvalidPlan marks a plan that breaks a grid invariant.
var ErrInvalidPlan = errors.New("invalid plan")

// Validate checks the grid invariants. vegetables may be nil to skip the
// catalog reference check.
func (p *Plan) Validate(vegetables VegetableLookup) error {
	if p == nil {
		return fmt.Errorf("%w: missing plan", ErrInvalidPlan)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: %s has dimensions %dx%d", ErrInvalidPlan, p.ID, p.Width, p.Height)
	}
	if p.GridCellSizeCm <= 0 {
		return fmt.Errorf("%w: %s has cell size %d", ErrInvalidPlan, p.ID, p.GridCellSizeCm)
	}
	if len(p.Cells) != p.Width*p.Height {
		return fmt.Errorf("%w: %s has %d cells, want %d", ErrInvalidPlan, p.ID, len(p.Cells), p.Width*p.Height)
	}

	seen := make(map[[2]int]bool, len(p.Cells))
	for _, c := range p.Cells {
		if c.X < 0 || c.Y < 0 || c.X >= p.Width || c.Y >= p.Height {
			return fmt.Errorf("%w: cell %s outside %dx%d", ErrInvalidPlan, c.ID, p.Width, p.Height)
		}
		key := [2]int{c.X, c.Y}
		if seen[key] {
			return fmt.Errorf("%w: duplicate cell at %d,%d", ErrInvalidPlan, c.X, c.Y)
		}
		seen[key] = true
		if c.ID != CellID(c.X, c.Y) {
			return fmt.Errorf("%w: cell at %d,%d has id %q", ErrInvalidPlan, c.X, c.Y, c.ID)
		}
		if c.Type != CellBed && c.Type != CellPathway {
			return fmt.Errorf("%w: cell %s has type %q", ErrInvalidPlan, c.ID, c.Type)
		}
		if c.Type == CellPathway && c.Occupied() {
			return fmt.Errorf("%w: pathway %s holds %s", ErrInvalidPlan, c.ID, c.Content)
		}
		if vegetables != nil && c.Occupied() && !vegetables.Has(c.Content) {
			return fmt.Errorf("%w: cell %s holds unknown vegetable %s", ErrInvalidPlan, c.ID, c.Content)
		}
	}
	return nil
}
