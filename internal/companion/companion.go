// Package companion derives good and bad neighbour indicators for planted
// cells from the physical distance between plants.
package companion

import (
	"math"

	"garden-planner/internal/catalog"
	"garden-planner/internal/garden"
)

// fallbackSizeCm stands in for catalog entries without a usable size.
const fallbackSizeCm = 30.0

// Vegetables resolves catalog entries by id.
type Vegetables interface {
	Get(id string) (catalog.Vegetable, bool)
}

// Status is the companion indicator pair of one cell. Both flags may be set.
type Status struct {
	HasGoodNeighbor bool `json:"hasGoodNeighbor"`
	HasBadNeighbor  bool `json:"hasBadNeighbor"`
}

// Relation classifies a neighbour from the queried vegetable's point of view.
type Relation string

const (
	Good Relation = "good"
	Bad  Relation = "bad"
)

// Neighbor is one companion finding within reach of the queried cell.
type Neighbor struct {
	CellID      string   `json:"cellId"`
	VegetableID string   `json:"vegetableId"`
	Relation    Relation `json:"relation"`
	DistanceCm  float64  `json:"distanceCm"`
	ThresholdCm float64  `json:"thresholdCm"`
}

// Evaluator computes companion status against a catalog.
type Evaluator struct {
	vegetables Vegetables
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(vegetables Vegetables) *Evaluator {
	return &Evaluator{vegetables: vegetables}
}

// Status reports whether the vegetable in cellID has a good and/or a bad
// companion within reach. Only the queried vegetable's own lists count.
func (e *Evaluator) Status(p *garden.Plan, cellID string) Status {
	var s Status
	e.scan(p, cellID, func(n Neighbor) bool {
		switch n.Relation {
		case Good:
			s.HasGoodNeighbor = true
		case Bad:
			s.HasBadNeighbor = true
		}
		return !(s.HasGoodNeighbor && s.HasBadNeighbor)
	})
	return s
}

// StatusAll returns the status of every occupied cell keyed by cell id.
func (e *Evaluator) StatusAll(p *garden.Plan) map[string]Status {
	out := make(map[string]Status)
	if p == nil {
		return out
	}
	for _, c := range p.OccupiedCells() {
		out[c.ID] = e.Status(p, c.ID)
	}
	return out
}

// Neighbors lists every good or bad companion within reach of cellID in
// grid order.
func (e *Evaluator) Neighbors(p *garden.Plan, cellID string) []Neighbor {
	var out []Neighbor
	e.scan(p, cellID, func(n Neighbor) bool {
		out = append(out, n)
		return true
	})
	return out
}

// scan calls visit for each related neighbour in reach until visit
// returns false.
func (e *Evaluator) scan(p *garden.Plan, cellID string, visit func(Neighbor) bool) {
	if p == nil {
		return
	}
	cell, ok := p.Cell(cellID)
	if !ok || !cell.Occupied() {
		return
	}
	self, ok := e.vegetables.Get(cell.Content)
	if !ok {
		return
	}

	unit := float64(p.GridCellSizeCm)
	for _, other := range p.Cells {
		if other.ID == cell.ID || !other.Occupied() {
			continue
		}
		veg, ok := e.vegetables.Get(other.Content)
		if !ok {
			continue
		}

		good, bad := self.IsGoodCompanion(veg.ID), self.IsBadCompanion(veg.ID)
		if !good && !bad {
			continue
		}

		dx := float64(other.X-cell.X) * unit
		dy := float64(other.Y-cell.Y) * unit
		distance := math.Sqrt(dx*dx + dy*dy)
		threshold := radius(self) + radius(veg)
		if distance > threshold {
			continue
		}

		n := Neighbor{CellID: other.ID, VegetableID: veg.ID, DistanceCm: distance, ThresholdCm: threshold}
		if good {
			n.Relation = Good
			if !visit(n) {
				return
			}
		}
		if bad {
			n.Relation = Bad
			if !visit(n) {
				return
			}
		}
	}
}

func radius(v catalog.Vegetable) float64 {
	if v.SizeCm <= 0 {
		return fallbackSizeCm / 2
	}
	return v.SizeCm / 2
}
