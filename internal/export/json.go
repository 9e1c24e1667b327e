package export

import (
	"encoding/json"
	"fmt"

	"garden-planner/internal/companion"
	"garden-planner/internal/garden"
	"garden-planner/internal/shopping"
)

// Document is the JSON export of a plan with everything derived from it.
type Document struct {
	Plan       *garden.Plan                `json:"plan"`
	Summary    shopping.Summary            `json:"summary"`
	Companions map[string]companion.Status `json:"companions"`
}

// PlanJSON renders the plan, its summary and the companion status of every
// planted cell as indented JSON.
func PlanJSON(p *garden.Plan, statuses map[string]companion.Status, s shopping.Summary) ([]byte, error) {
	if statuses == nil {
		statuses = map[string]companion.Status{}
	}
	data, err := json.MarshalIndent(Document{Plan: p, Summary: s, Companions: statuses}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan export: %w", err)
	}
	return data, nil
}
