package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"garden-planner/internal/companion"
	"garden-planner/internal/garden"
	"garden-planner/internal/shopping"
)

//go:embed plan.html.tmpl
var planHTMLTemplate string

var planPage = template.Must(template.New("plan").Parse(planHTMLTemplate))

type htmlCell struct {
	ID    string
	Class string
	Title string
	Glyph string
}

type htmlPage struct {
	Lang    string
	Plan    *garden.Plan
	Area    string
	Rows    [][]htmlCell
	Summary shopping.Summary
}

// PlanHTML renders a standalone page with the grid and the summary tables.
func PlanHTML(p *garden.Plan, vegetables Vegetables, statuses map[string]companion.Status, s shopping.Summary, lang string) ([]byte, error) {
	return renderPlan("plan", p, vegetables, statuses, s, lang)
}

// PlanHTMLFragment renders the same content without the document shell and
// stylesheet, for embedding in a blog post.
func PlanHTMLFragment(p *garden.Plan, vegetables Vegetables, statuses map[string]companion.Status, s shopping.Summary) ([]byte, error) {
	return renderPlan("body", p, vegetables, statuses, s, "")
}

func renderPlan(name string, p *garden.Plan, vegetables Vegetables, statuses map[string]companion.Status, s shopping.Summary, lang string) ([]byte, error) {
	if lang == "" {
		lang = "en"
	}
	page := htmlPage{
		Lang:    lang,
		Plan:    p,
		Area:    FormatArea(s.BedAreaM2),
		Summary: s,
	}
	for y := 0; y < p.Height; y++ {
		row := make([]htmlCell, 0, p.Width)
		for x := 0; x < p.Width; x++ {
			c, _ := p.CellAt(x, y)
			row = append(row, htmlCellFor(c, vegetables, statuses[c.ID]))
		}
		page.Rows = append(page.Rows, row)
	}

	var buf bytes.Buffer
	if err := planPage.ExecuteTemplate(&buf, name, page); err != nil {
		return nil, fmt.Errorf("failed to render plan page: %w", err)
	}
	return buf.Bytes(), nil
}

func htmlCellFor(c garden.Cell, vegetables Vegetables, st companion.Status) htmlCell {
	classes := []string{string(c.Type)}
	if st.HasGoodNeighbor {
		classes = append(classes, "good")
	}
	if st.HasBadNeighbor {
		classes = append(classes, "bad")
	}
	hc := htmlCell{ID: c.ID, Class: strings.Join(classes, " "), Title: c.ID}
	if !c.Occupied() {
		return hc
	}
	if v, ok := vegetables.Get(c.Content); ok {
		hc.Glyph = v.Icon
		if hc.Glyph == "" {
			hc.Glyph = Abbrev(v)
		}
		hc.Title = fmt.Sprintf("%s: %s", c.ID, v.Name)
		return hc
	}
	hc.Glyph = "?"
	hc.Title = fmt.Sprintf("%s: %s", c.ID, c.Content)
	return hc
}
