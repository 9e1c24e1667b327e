package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// Vegetable is an immutable catalog entry.
type Vegetable struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Icon           string   `yaml:"icon" json:"icon"`
	SizeCm         float64  `yaml:"sizeCm" json:"sizeCm"` // mature diameter
	GoodCompanions []string `yaml:"goodCompanions" json:"goodCompanions"`
	BadCompanions  []string `yaml:"badCompanions" json:"badCompanions"`
	PlantingPeriod string   `yaml:"plantingPeriod" json:"plantingPeriod"`
	HarvestPeriod  string   `yaml:"harvestPeriod" json:"harvestPeriod"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	Tips           string   `yaml:"tips,omitempty" json:"tips,omitempty"`
}

// IsGoodCompanion reports whether id is on v's own good list.
func (v Vegetable) IsGoodCompanion(id string) bool {
	return slices.Contains(v.GoodCompanions, id)
}

// IsBadCompanion reports whether id is on v's own bad list.
func (v Vegetable) IsBadCompanion(id string) bool {
	return slices.Contains(v.BadCompanions, id)
}

// Label returns the icon and name, as shown in lists.
func (v Vegetable) Label() string {
	if v.Icon == "" {
		return v.Name
	}
	return v.Icon + " " + v.Name
}

// Validate checks the fields every consumer relies on.
func (v Vegetable) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidVegetable)
	}
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: %s has no name", ErrInvalidVegetable, v.ID)
	}
	if v.SizeCm <= 0 {
		return fmt.Errorf("%w: %s has non-positive size %v", ErrInvalidVegetable, v.ID, v.SizeCm)
	}
	return nil
}
