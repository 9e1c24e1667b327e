// Package export renders plans and their summaries for people: plain text
// for terminals and clipboards, Markdown for chat, and a standalone HTML
// page.
package export

import (
	"fmt"
	"strings"

	"garden-planner/internal/catalog"
	"garden-planner/internal/companion"
	"garden-planner/internal/garden"
	"garden-planner/internal/shopping"
)

// Vegetables resolves catalog entries by id.
type Vegetables interface {
	Get(id string) (catalog.Vegetable, bool)
}

// Cell glyphs used by the ASCII grid.
const (
	glyphEmptyBed = ".."
	glyphPathway  = "##"
	glyphUnknown  = "??"
)

// Marker returns the one-character companion marker of a status.
func Marker(s companion.Status) string {
	switch {
	case s.HasGoodNeighbor && s.HasBadNeighbor:
		return "~"
	case s.HasGoodNeighbor:
		return "+"
	case s.HasBadNeighbor:
		return "!"
	default:
		return " "
	}
}

// GridOptions tune GridText.
type GridOptions struct {
	// Icons renders catalog icons instead of two-letter abbreviations.
	Icons bool
}

// GridText draws the plan as a character grid with column and row
// numbers. Each planted cell carries its companion marker.
func GridText(p *garden.Plan, vegetables Vegetables, statuses map[string]companion.Status, opts GridOptions) string {
	var sb strings.Builder

	sb.WriteString("   ")
	for x := 0; x < p.Width; x++ {
		fmt.Fprintf(&sb, " %2d ", x)
	}
	sb.WriteString("\n")

	for y := 0; y < p.Height; y++ {
		fmt.Fprintf(&sb, "%2d ", y)
		for x := 0; x < p.Width; x++ {
			c, _ := p.CellAt(x, y)
			sb.WriteString(" ")
			sb.WriteString(cellGlyph(c, vegetables, opts))
			sb.WriteString(Marker(statuses[c.ID]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cellGlyph(c garden.Cell, vegetables Vegetables, opts GridOptions) string {
	switch {
	case c.Type == garden.CellPathway && !c.Occupied():
		return glyphPathway
	case !c.Occupied():
		return glyphEmptyBed
	}
	v, ok := vegetables.Get(c.Content)
	if !ok {
		return glyphUnknown
	}
	if opts.Icons && v.Icon != "" {
		return v.Icon
	}
	return Abbrev(v)
}

// Abbrev returns a two-letter code for v: the first letters of the first
// two words, or the first two letters of a single word.
func Abbrev(v catalog.Vegetable) string {
	words := strings.FieldsFunc(v.Name, func(r rune) bool { return r == ' ' || r == '-' })
	var code []rune
	switch {
	case len(words) >= 2:
		code = []rune{[]rune(words[0])[0], []rune(words[1])[0]}
	case len(words) == 1:
		code = []rune(words[0])
	default:
		code = []rune(v.ID)
	}
	for len(code) < 2 {
		code = append(code, ' ')
	}
	return strings.ToUpper(string(code[0])) + strings.ToLower(string(code[1]))
}

// Legend lists the abbreviations used in the plan.
func Legend(s shopping.Summary) string {
	var sb strings.Builder
	for _, vc := range s.VegetableCounts {
		fmt.Fprintf(&sb, "%s = %s\n", Abbrev(vc.Vegetable), vc.Vegetable.Label())
	}
	sb.WriteString(glyphEmptyBed + " = empty bed, " + glyphPathway + " = pathway, + good / ! bad / ~ both companions nearby\n")
	return sb.String()
}

// ShoppingListText is the copyable shopping list: seedlings with counts
// and the base fertilizer amounts.
func ShoppingListText(title string, s shopping.Summary) string {
	lines := []string{
		fmt.Sprintf("🌱 %s - Shopping list", title),
		"",
		"[Seedlings]",
	}
	for _, vc := range s.VegetableCounts {
		lines = append(lines, fmt.Sprintf("- %s: %d %s", vc.Vegetable.Name, vc.Count, plural(vc.Count, "plant", "plants")))
	}
	lines = append(lines,
		"",
		"[Base fertilizer]",
		fmt.Sprintf("- Cow manure compost: %dkg", s.Fertilizers.CowManureKg),
		fmt.Sprintf("- Magnesium lime: %dg", s.Fertilizers.LimeG),
		fmt.Sprintf("- Chemical fertilizer (8-8-8): %dg", s.Fertilizers.ChemicalG),
	)
	return strings.Join(lines, "\n")
}

// SummaryText is the full terminal summary: area, seedlings, fertilizer
// with rates, and the planting schedule.
func SummaryText(title string, s shopping.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", title)
	fmt.Fprintf(&sb, "Bed area (beds only): %s m²\n\n", FormatArea(s.BedAreaM2))

	sb.WriteString("Seedlings\n")
	if len(s.VegetableCounts) == 0 {
		sb.WriteString("  (nothing planted yet)\n")
	}
	for _, vc := range s.VegetableCounts {
		fmt.Fprintf(&sb, "  %-20s %3d\n", vc.Vegetable.Label(), vc.Count)
	}

	sb.WriteString("\nBase fertilizer\n")
	fmt.Fprintf(&sb, "  %-28s %4d kg  (%d kg/m²)\n", "Cow manure compost", s.Fertilizers.CowManureKg, shopping.CowManureKgPerM2)
	fmt.Fprintf(&sb, "  %-28s %4d g   (%d g/m²)\n", "Magnesium lime", s.Fertilizers.LimeG, shopping.LimeGPerM2)
	fmt.Fprintf(&sb, "  %-28s %4d g   (%d g/m²)\n", "Chemical fertilizer (8-8-8)", s.Fertilizers.ChemicalG, shopping.ChemicalGPerM2)

	if len(s.Schedule) > 0 {
		sb.WriteString("\nSchedule\n")
		for _, v := range s.Schedule {
			fmt.Fprintf(&sb, "  %-20s plant %s, harvest %s\n", v.Label(), orDash(v.PlantingPeriod), orDash(v.HarvestPeriod))
		}
	}
	return sb.String()
}

// FormatArea prints an area with two decimals, trimming trailing zeros.
func FormatArea(m2 float64) string {
	s := fmt.Sprintf("%.2f", m2)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
