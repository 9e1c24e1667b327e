package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-planner/internal/catalog"
	"garden-planner/internal/clock"
	"garden-planner/internal/companion"
	"garden-planner/internal/garden"
	"garden-planner/internal/shopping"
)

type fixture struct {
	cat      *catalog.Catalog
	plan     *garden.Plan
	statuses map[string]companion.Status
	summary  shopping.Summary
}

// newFixture builds a 3x2 plan: tomato next to basil on the first row and a
// pathway in the bottom-right corner.
func newFixture(t *testing.T) fixture {
	t.Helper()
	cat, err := catalog.New([]catalog.Vegetable{
		{ID: "tomato", Name: "Tomato", Icon: "🍅", SizeCm: 50, GoodCompanions: []string{"basil"}, PlantingPeriod: "May", HarvestPeriod: "Jul-Sep"},
		{ID: "basil", Name: "Basil", Icon: "🌿", SizeCm: 30, GoodCompanions: []string{"tomato"}},
	})
	require.NoError(t, err)

	e := garden.NewEditor(cat, clock.NewFake(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)), garden.PathwayReject)
	p := e.NewPlan("p1", "Backyard", 3, 2, 20)
	p = e.Place(p, "0-0", "tomato")
	p = e.Place(p, "1-0", "basil")
	p = e.ToggleCellType(p, "2-1")

	return fixture{
		cat:      cat,
		plan:     p,
		statuses: companion.NewEvaluator(cat).StatusAll(p),
		summary:  shopping.NewAggregator(cat, "en").Summarize(p),
	}
}

func TestGridText(t *testing.T) {
	f := newFixture(t)

	t.Run("abbreviations", func(t *testing.T) {
		got := GridText(f.plan, f.cat, f.statuses, GridOptions{})
		want := "     0   1   2 \n" +
			" 0  To+ Ba+ .. \n" +
			" 1  ..  ..  ## \n"
		assert.Equal(t, want, got)
	})

	t.Run("icons", func(t *testing.T) {
		got := GridText(f.plan, f.cat, f.statuses, GridOptions{Icons: true})
		assert.Contains(t, got, "🍅+")
		assert.Contains(t, got, "🌿+")
	})
}

func TestMarker(t *testing.T) {
	tests := []struct {
		status companion.Status
		want   string
	}{
		{companion.Status{}, " "},
		{companion.Status{HasGoodNeighbor: true}, "+"},
		{companion.Status{HasBadNeighbor: true}, "!"},
		{companion.Status{HasGoodNeighbor: true, HasBadNeighbor: true}, "~"},
	}
	for _, tt := range tests {
		if got := Marker(tt.status); got != tt.want {
			t.Errorf("Marker(%+v) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestAbbrev(t *testing.T) {
	tests := []struct {
		v    catalog.Vegetable
		want string
	}{
		{catalog.Vegetable{ID: "tomato", Name: "Tomato"}, "To"},
		{catalog.Vegetable{ID: "green-pepper", Name: "green pepper"}, "Gp"},
		{catalog.Vegetable{ID: "x", Name: "X"}, "X "},
		{catalog.Vegetable{ID: "okra"}, "Ok"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Abbrev(tt.v), tt.v.ID)
	}
}

func TestShoppingListText(t *testing.T) {
	f := newFixture(t)

	got := ShoppingListText(f.plan.Title, f.summary)

	want := strings.Join([]string{
		"🌱 Backyard - Shopping list",
		"",
		"[Seedlings]",
		"- Basil: 1 plant",
		"- Tomato: 1 plant",
		"",
		"[Base fertilizer]",
		"- Cow manure compost: 1kg",
		"- Magnesium lime: 20g",
		"- Chemical fertilizer (8-8-8): 20g",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestSummaryText(t *testing.T) {
	f := newFixture(t)

	got := SummaryText(f.plan.Title, f.summary)

	assert.Contains(t, got, "Bed area (beds only): 0.2 m²")
	assert.Contains(t, got, "🍅 Tomato")
	assert.Contains(t, got, "plant May, harvest Jul-Sep")
	assert.Contains(t, got, "plant -, harvest -")
}

func TestSummaryText_Empty(t *testing.T) {
	got := SummaryText("Empty", shopping.Summary{})
	assert.Contains(t, got, "(nothing planted yet)")
	assert.NotContains(t, got, "Schedule")
}

func TestFormatArea(t *testing.T) {
	tests := map[float64]string{
		0:    "0",
		0.16: "0.16",
		0.2:  "0.2",
		1:    "1",
		2.5:  "2.5",
	}
	for in, want := range tests {
		if got := FormatArea(in); got != want {
			t.Errorf("FormatArea(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestSummaryMarkdown(t *testing.T) {
	f := newFixture(t)

	got := SummaryMarkdown("my_plot", f.summary)

	assert.True(t, strings.HasPrefix(got, "🧾 *my\\_plot*\n"))
	assert.Contains(t, got, "• 🌿 Basil: 1\n")
	assert.Contains(t, got, "• Magnesium lime: 20 g\n")
	assert.Contains(t, got, "📅 *Schedule*")
}

func TestPlanMarkdown(t *testing.T) {
	f := newFixture(t)

	got := PlanMarkdown(f.plan, f.cat, f.statuses)

	lines := strings.Split(got, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "🍅🌿⬜", lines[1])
	assert.Equal(t, "⬜⬜⬛", lines[2])
	assert.NotContains(t, got, "Bad neighbours")
}

func TestPlanHTML(t *testing.T) {
	f := newFixture(t)

	page, err := PlanHTML(f.plan, f.cat, f.statuses, f.summary, "")
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	require.NoError(t, err)

	assert.Equal(t, "Backyard", doc.Find("h1").Text())
	assert.Equal(t, "0.2", doc.Find("#bed-area").Text())
	assert.Equal(t, 2, doc.Find("table.grid tr").Length())
	assert.Equal(t, 6, doc.Find("table.grid td").Length())

	tomato := doc.Find("#cell-0-0")
	assert.Equal(t, "🍅", tomato.Text())
	assert.True(t, tomato.HasClass("good"))
	assert.True(t, tomato.HasClass("bed"))
	assert.True(t, doc.Find("#cell-2-1").HasClass("pathway"))

	// header row plus one row per vegetable
	assert.Equal(t, 3, doc.Find("#seedlings tr").Length())
	assert.Contains(t, doc.Find("#fertilizer").Text(), "20 g")
	assert.Equal(t, 1, doc.Find("#schedule").Length())
}

func TestPlanHTML_EscapesTitle(t *testing.T) {
	f := newFixture(t)
	f.plan.Title = "<script>alert(1)</script>"

	page, err := PlanHTML(f.plan, f.cat, f.statuses, f.summary, "en")
	require.NoError(t, err)

	assert.NotContains(t, string(page), "<script>alert(1)</script>")
}

func TestPlanHTMLFragment(t *testing.T) {
	f := newFixture(t)

	frag, err := PlanHTMLFragment(f.plan, f.cat, f.statuses, f.summary)
	require.NoError(t, err)

	html := string(frag)
	assert.NotContains(t, html, "<html")
	assert.NotContains(t, html, "<style>")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(html), "<h1>Backyard</h1>"))
	assert.Contains(t, html, `id="cell-0-0"`)
	assert.Contains(t, html, `id="fertilizer"`)
}

func TestPlanJSON(t *testing.T) {
	f := newFixture(t)

	data, err := PlanJSON(f.plan, f.statuses, f.summary)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "p1", doc.Plan.ID)
	assert.Len(t, doc.Plan.Cells, 6)
	assert.Equal(t, 2, doc.Summary.TotalPlants())
	assert.True(t, doc.Companions["0-0"].HasGoodNeighbor)
}
