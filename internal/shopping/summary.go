// Package shopping derives what a plan needs to be planted: bed area,
// base fertilizer amounts, seedling counts and the planting schedule.
package shopping

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"garden-planner/internal/catalog"
	"garden-planner/internal/garden"
)

// Application rates per square metre of bed.
const (
	CowManureKgPerM2 = 2
	LimeGPerM2       = 100
	ChemicalGPerM2   = 100
)

// Vegetables resolves catalog entries by id.
type Vegetables interface {
	Get(id string) (catalog.Vegetable, bool)
}

// Fertilizers are base soil amendments for the bed area.
type Fertilizers struct {
	CowManureKg int `json:"cowManureKg"`
	LimeG       int `json:"limeG"`
	ChemicalG   int `json:"chemicalG"`
}

// VegetableCount is how many cells one vegetable occupies.
type VegetableCount struct {
	Vegetable catalog.Vegetable `json:"vegetable"`
	Count     int               `json:"count"`
}

// Summary is the derived shopping and soil-preparation view of a plan.
type Summary struct {
	BedAreaM2       float64             `json:"bedAreaM2"`
	Fertilizers     Fertilizers         `json:"fertilizers"`
	VegetableCounts []VegetableCount    `json:"vegetableCounts"`
	Schedule        []catalog.Vegetable `json:"schedule"`
}

// TotalPlants sums the seedling counts.
func (s Summary) TotalPlants() int {
	n := 0
	for _, vc := range s.VegetableCounts {
		n += vc.Count
	}
	return n
}

// Aggregator computes summaries against a catalog.
type Aggregator struct {
	vegetables Vegetables
	tag        language.Tag
}

// NewAggregator creates an Aggregator sorting names under locale (a BCP 47
// tag such as "en" or "ja"). Unparseable locales fall back to English.
func NewAggregator(vegetables Vegetables, locale string) *Aggregator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Aggregator{vegetables: vegetables, tag: tag}
}

// Summarize derives the summary of p. A nil plan yields the zero summary.
func (a *Aggregator) Summarize(p *garden.Plan) Summary {
	s := Summary{
		VegetableCounts: []VegetableCount{},
		Schedule:        []catalog.Vegetable{},
	}
	if p == nil {
		return s
	}

	cellSize := p.GridCellSizeCm
	if cellSize <= 0 {
		cellSize = garden.DefaultCellSizeCm
	}
	hundredths := areaHundredths(p.BedCount(), cellSize)
	s.BedAreaM2 = float64(hundredths) / 100
	s.Fertilizers = fertilizersFor(hundredths)

	counts := make(map[string]int)
	for _, c := range p.Cells {
		if c.Occupied() {
			counts[c.Content]++
		}
	}
	for id, n := range counts {
		v, ok := a.vegetables.Get(id)
		if !ok {
			continue
		}
		s.VegetableCounts = append(s.VegetableCounts, VegetableCount{Vegetable: v, Count: n})
	}

	// collate.Collator keeps internal buffers; one per call.
	col := collate.New(a.tag)
	slices.SortFunc(s.VegetableCounts, func(x, y VegetableCount) int {
		if c := col.CompareString(x.Vegetable.Name, y.Vegetable.Name); c != 0 {
			return c
		}
		return cmp.Compare(x.Vegetable.ID, y.Vegetable.ID)
	})

	for _, vc := range s.VegetableCounts {
		s.Schedule = append(s.Schedule, vc.Vegetable)
	}
	return s
}

// areaHundredths is the bed area in hundredths of a square metre, rounded
// half up.
func areaHundredths(bedCount, cellSizeCm int) int {
	cm2 := bedCount * cellSizeCm * cellSizeCm
	return (cm2 + 50) / 100
}

func fertilizersFor(hundredths int) Fertilizers {
	return Fertilizers{
		CowManureKg: ceilDiv(hundredths*CowManureKgPerM2, 100),
		LimeG:       ceilDiv(hundredths*LimeGPerM2, 100),
		ChemicalG:   ceilDiv(hundredths*ChemicalGPerM2, 100),
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
