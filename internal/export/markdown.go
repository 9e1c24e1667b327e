package export

import (
	"fmt"
	"strings"

	"garden-planner/internal/companion"
	"garden-planner/internal/garden"
	"garden-planner/internal/shopping"
)

// SummaryMarkdown renders a summary in Telegram Markdown.
func SummaryMarkdown(title string, s shopping.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧾 *%s*\n", EscapeMarkdown(title))
	fmt.Fprintf(&sb, "Area: %s m² (beds only)\n\n", FormatArea(s.BedAreaM2))

	sb.WriteString("🌱 *Seedlings*\n")
	if len(s.VegetableCounts) == 0 {
		sb.WriteString("_Nothing planted yet_\n")
	}
	for _, vc := range s.VegetableCounts {
		fmt.Fprintf(&sb, "• %s: %d\n", EscapeMarkdown(vc.Vegetable.Label()), vc.Count)
	}

	sb.WriteString("\n🪴 *Base fertilizer*\n")
	fmt.Fprintf(&sb, "• Cow manure compost: %d kg\n", s.Fertilizers.CowManureKg)
	fmt.Fprintf(&sb, "• Magnesium lime: %d g\n", s.Fertilizers.LimeG)
	fmt.Fprintf(&sb, "• Chemical fertilizer (8-8-8): %d g\n", s.Fertilizers.ChemicalG)

	if len(s.Schedule) > 0 {
		sb.WriteString("\n📅 *Schedule*\n")
		for _, v := range s.Schedule {
			fmt.Fprintf(&sb, "• %s: plant %s, harvest %s\n",
				EscapeMarkdown(v.Label()), EscapeMarkdown(orDash(v.PlantingPeriod)), EscapeMarkdown(orDash(v.HarvestPeriod)))
		}
	}
	return sb.String()
}

// PlanMarkdown renders the grid with icons inside a Markdown message.
func PlanMarkdown(p *garden.Plan, vegetables Vegetables, statuses map[string]companion.Status) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗺 *%s* (%dx%d, %d cm cells)\n", EscapeMarkdown(p.Title), p.Width, p.Height, p.GridCellSizeCm)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			c, _ := p.CellAt(x, y)
			sb.WriteString(chatGlyph(c, vegetables))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("⬜ empty  ⬛ pathway\n")
	if warn := badNeighbours(p, statuses); len(warn) > 0 {
		fmt.Fprintf(&sb, "⚠️ Bad neighbours at %s\n", strings.Join(warn, ", "))
	}
	return sb.String()
}

func chatGlyph(c garden.Cell, vegetables Vegetables) string {
	if !c.Occupied() {
		if c.Type == garden.CellPathway {
			return "⬛"
		}
		return "⬜"
	}
	v, ok := vegetables.Get(c.Content)
	if !ok || v.Icon == "" {
		return "❓"
	}
	return v.Icon
}

func badNeighbours(p *garden.Plan, statuses map[string]companion.Status) []string {
	var ids []string
	for _, c := range p.Cells {
		if statuses[c.ID].HasBadNeighbor {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// EscapeMarkdown escapes the characters Telegram's legacy Markdown treats
// as formatting.
func EscapeMarkdown(s string) string {
	r := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return r.Replace(s)
}
