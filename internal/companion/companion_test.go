package companion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-planner/internal/catalog"
	"garden-planner/internal/clock"
	"garden-planner/internal/garden"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Vegetable{
		{ID: "tomato", Name: "Tomato", SizeCm: 50, GoodCompanions: []string{"basil"}, BadCompanions: []string{"potato"}},
		{ID: "basil", Name: "Basil", SizeCm: 30},
		{ID: "potato", Name: "Potato", SizeCm: 40, BadCompanions: []string{"tomato"}},
		{ID: "fennel", Name: "Fennel", SizeCm: 40, BadCompanions: []string{"basil"}},
		{ID: "mint", Name: "Mint", SizeCm: 20, GoodCompanions: []string{"tomato"}, BadCompanions: []string{"tomato"}},
	})
	require.NoError(t, err)
	return c
}

func plant(t *testing.T, c *catalog.Catalog, w, h, cellCm int, placements map[string]string) *garden.Plan {
	t.Helper()
	e := garden.NewEditor(c, clock.NewFake(time.Unix(0, 0)), garden.PathwayReject)
	p := e.NewPlan("p", "test", w, h, cellCm)
	for cell, veg := range placements {
		next := e.Place(p, cell, veg)
		require.NotSame(t, p, next, "place %s in %s", veg, cell)
		p = next
	}
	return p
}

func TestStatus_AdjacentGoodCompanion(t *testing.T) {
	c := testCatalog(t)
	p := plant(t, c, 2, 1, 20, map[string]string{"0-0": "tomato", "1-0": "basil"})
	ev := NewEvaluator(c)

	// distance 20 <= 25 + 15
	assert.Equal(t, Status{HasGoodNeighbor: true}, ev.Status(p, "0-0"))
}

func TestStatus_Directional(t *testing.T) {
	c := testCatalog(t)
	ev := NewEvaluator(c)

	// Only the cell whose vegetable lists the relation is flagged.
	tests := []struct {
		name     string
		lister   string
		wantSelf Status
	}{
		{name: "good listed one way", lister: "tomato", wantSelf: Status{HasGoodNeighbor: true}},
		{name: "bad listed one way", lister: "fennel", wantSelf: Status{HasBadNeighbor: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plant(t, c, 2, 1, 20, map[string]string{"0-0": tt.lister, "1-0": "basil"})
			assert.Equal(t, tt.wantSelf, ev.Status(p, "0-0"))
			assert.Equal(t, Status{}, ev.Status(p, "1-0"))
		})
	}

	t.Run("listed both ways", func(t *testing.T) {
		p := plant(t, c, 2, 1, 20, map[string]string{"0-0": "tomato", "1-0": "potato"})
		assert.Equal(t, Status{HasBadNeighbor: true}, ev.Status(p, "0-0"))
		assert.Equal(t, Status{HasBadNeighbor: true}, ev.Status(p, "1-0"))
	})
}

func TestStatus_Threshold(t *testing.T) {
	c := testCatalog(t)
	tests := []struct {
		name   string
		cellCm int
		to     string
		want   Status
	}{
		// tomato 50 + basil 30 gives a 40 cm threshold
		{name: "exactly at threshold", cellCm: 40, to: "1-0", want: Status{HasGoodNeighbor: true}},
		{name: "just beyond", cellCm: 41, to: "1-0", want: Status{}},
		{name: "diagonal within", cellCm: 28, to: "1-1", want: Status{HasGoodNeighbor: true}},
		{name: "diagonal beyond", cellCm: 29, to: "1-1", want: Status{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plant(t, c, 2, 2, tt.cellCm, map[string]string{"0-0": "tomato", tt.to: "basil"})
			assert.Equal(t, tt.want, NewEvaluator(c).Status(p, "0-0"))
		})
	}
}

func TestStatus_GoodAndBadIndependent(t *testing.T) {
	c := testCatalog(t)
	p := plant(t, c, 3, 1, 20, map[string]string{"0-0": "basil", "1-0": "tomato", "2-0": "potato"})
	ev := NewEvaluator(c)

	assert.Equal(t, Status{HasGoodNeighbor: true, HasBadNeighbor: true}, ev.Status(p, "1-0"))

	p2 := plant(t, c, 2, 1, 20, map[string]string{"0-0": "mint", "1-0": "tomato"})
	assert.Equal(t, Status{HasGoodNeighbor: true, HasBadNeighbor: true}, ev.Status(p2, "0-0"))
	assert.Len(t, ev.Neighbors(p2, "0-0"), 2)
}

func TestStatus_NoOps(t *testing.T) {
	c := testCatalog(t)
	p := plant(t, c, 2, 1, 20, map[string]string{"0-0": "tomato"})
	ev := NewEvaluator(c)

	assert.Equal(t, Status{}, ev.Status(p, "1-0"), "empty cell")
	assert.Equal(t, Status{}, ev.Status(p, "9-9"), "missing cell")
	assert.Equal(t, Status{}, ev.Status(nil, "0-0"), "nil plan")

	// a neighbour id the catalog no longer knows contributes nothing
	p.Cells[1].Content = "basil"
	smaller, err := catalog.New([]catalog.Vegetable{{ID: "tomato", Name: "Tomato", SizeCm: 50, GoodCompanions: []string{"basil"}}})
	require.NoError(t, err)
	assert.Equal(t, Status{}, NewEvaluator(smaller).Status(p, "0-0"))
}

func TestStatusAllAndNeighbors(t *testing.T) {
	c := testCatalog(t)
	p := plant(t, c, 3, 1, 20, map[string]string{"0-0": "basil", "1-0": "tomato", "2-0": "potato"})
	ev := NewEvaluator(c)

	all := ev.StatusAll(p)
	assert.Len(t, all, 3)
	assert.Equal(t, Status{HasGoodNeighbor: true, HasBadNeighbor: true}, all["1-0"])
	assert.Equal(t, Status{HasBadNeighbor: true}, all["2-0"])

	got := ev.Neighbors(p, "1-0")
	require.Len(t, got, 2)
	assert.Equal(t, Neighbor{CellID: "0-0", VegetableID: "basil", Relation: Good, DistanceCm: 20, ThresholdCm: 40}, got[0])
	assert.Equal(t, Neighbor{CellID: "2-0", VegetableID: "potato", Relation: Bad, DistanceCm: 20, ThresholdCm: 45}, got[1])
}

func TestRadiusFallback(t *testing.T) {
	assert.Equal(t, 15.0, radius(catalog.Vegetable{}))
	assert.Equal(t, 25.0, radius(catalog.Vegetable{SizeCm: 50}))
}
