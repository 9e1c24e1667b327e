package cli

import (
	"errors"
	"fmt"
	"strconv"

	"garden-planner/internal/catalog"
	"garden-planner/internal/garden"
	"garden-planner/internal/planner"
	"garden-planner/internal/shopping"
)

var (
	errPlanNotFound      = errors.New("plan not found")
	errVegetableNotFound = errors.New("vegetable not found")
)

// findPlan resolves a plan id, unique id prefix or title.
func findPlan(p *planner.Planner, ref string) (*garden.Plan, error) {
	plan, ok := p.FindPlan(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errPlanNotFound, ref)
	}
	return plan, nil
}

// findVegetable resolves a vegetable id or name.
func findVegetable(c *catalog.Catalog, ref string) (catalog.Vegetable, error) {
	v, ok := c.Find(ref)
	if !ok {
		return catalog.Vegetable{}, fmt.Errorf("%w: %s (see `garden-planner catalog list`)", errVegetableNotFound, ref)
	}
	return v, nil
}

// cellArg normalizes "x,y" or "x-y" to a cell id.
func cellArg(s string) (string, error) {
	x, y, err := garden.ParseCellID(s)
	if err != nil {
		return "", err
	}
	return garden.CellID(x, y), nil
}

func intArg(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, s)
	}
	return n, nil
}

// changed reports whether an operation altered the plan.
func changed(before, after *garden.Plan) bool {
	if before == nil || after == nil {
		return before != after
	}
	return before.Title != after.Title || shopping.Fingerprint(before) != shopping.Fingerprint(after)
}
