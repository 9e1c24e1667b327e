// Package garden is the grid model of a garden plan and the operations
// that transform it.
//
// A Plan is treated as an immutable snapshot: every operation that changes
// something returns a new deep copy and leaves its input untouched, and an
// operation that changes nothing returns its input pointer as is. Invalid
// cell references are silent no-ops.
package garden

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CellType distinguishes plantable beds from pathways.
type CellType string

const (
	CellBed     CellType = "bed"
	CellPathway CellType = "pathway"
)

// DefaultCellSizeCm is the physical edge of one grid cell when none is given.
const DefaultCellSizeCm = 20

// Cell is one grid square. Content holds a vegetable id, empty when free.
type Cell struct {
	ID      string   `json:"id"`
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Type    CellType `json:"type"`
	Content string   `json:"content,omitempty"`
}

// Occupied reports whether the cell holds a vegetable.
func (c Cell) Occupied() bool {
	return c.Content != ""
}

// Plan is one garden layout.
type Plan struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	GridCellSizeCm int       `json:"gridCellSizeCm"`
	Cells          []Cell    `json:"cells"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CellID returns the identifier of the cell at (x, y).
func CellID(x, y int) string {
	return fmt.Sprintf("%d-%d", x, y)
}

// ParseCellID accepts "x-y" or "x,y".
func ParseCellID(id string) (x, y int, err error) {
	sep := "-"
	if strings.Contains(id, ",") {
		sep = ","
	}
	parts := strings.Split(strings.TrimSpace(id), sep)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cell id %q: expected x-y", id)
	}
	x, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell id %q: %w", id, err)
	}
	y, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell id %q: %w", id, err)
	}
	return x, y, nil
}

// NewPlan creates an all-bed, empty grid. Dimensions below 1 are clamped
// to 1 and a non-positive cell size falls back to DefaultCellSizeCm.
func NewPlan(id, title string, width, height, cellSizeCm int, now time.Time) *Plan {
	width = max(width, 1)
	height = max(height, 1)
	if cellSizeCm <= 0 {
		cellSizeCm = DefaultCellSizeCm
	}
	return &Plan{
		ID:             id,
		Title:          title,
		Width:          width,
		Height:         height,
		GridCellSizeCm: cellSizeCm,
		Cells:          newCells(width, height, nil),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// newCells lays out a width x height grid in row-major order, reusing
// cells from keep at the coordinates they still cover.
func newCells(width, height int, keep map[[2]int]Cell) []Cell {
	cells := make([]Cell, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if c, ok := keep[[2]int{x, y}]; ok {
				cells = append(cells, c)
				continue
			}
			cells = append(cells, Cell{ID: CellID(x, y), X: x, Y: y, Type: CellBed})
		}
	}
	return cells
}

// Clone returns a structurally independent copy.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	c := *p
	c.Cells = make([]Cell, len(p.Cells))
	copy(c.Cells, p.Cells)
	return &c
}

// Cell returns the cell with the given id.
func (p *Plan) Cell(id string) (Cell, bool) {
	i := p.indexOf(id)
	if i < 0 {
		return Cell{}, false
	}
	return p.Cells[i], true
}

// CellAt returns the cell at (x, y).
func (p *Plan) CellAt(x, y int) (Cell, bool) {
	return p.Cell(CellID(x, y))
}

func (p *Plan) indexOf(id string) int {
	// Row-major layout makes the index computable; fall back to a scan
	// for plans loaded from older or hand-edited files.
	if x, y, err := ParseCellID(id); err == nil && x >= 0 && y >= 0 && x < p.Width && y < p.Height {
		if i := y*p.Width + x; i < len(p.Cells) && p.Cells[i].ID == id {
			return i
		}
	}
	for i := range p.Cells {
		if p.Cells[i].ID == id {
			return i
		}
	}
	return -1
}

// OccupiedCells returns the cells holding a vegetable, in grid order.
func (p *Plan) OccupiedCells() []Cell {
	var out []Cell
	for _, c := range p.Cells {
		if c.Occupied() {
			out = append(out, c)
		}
	}
	return out
}

// BedCount counts plantable cells.
func (p *Plan) BedCount() int {
	n := 0
	for _, c := range p.Cells {
		if c.Type == CellBed {
			n++
		}
	}
	return n
}
