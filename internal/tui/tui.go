// Package tui is the interactive terminal grid editor.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"garden-planner/internal/catalog"
	"garden-planner/internal/companion"
	"garden-planner/internal/export"
	"garden-planner/internal/garden"
	"garden-planner/internal/planner"
	"garden-planner/internal/shopping"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#bbf7d0"))

	bedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#78350f")).
			Foreground(lipgloss.Color("#fef3c7"))

	pathwayStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#52525b")).
			Foreground(lipgloss.Color("#d4d4d8"))

	goodStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#166534")).
			Foreground(lipgloss.Color("#f0fdf4"))

	badStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#991b1b")).
			Foreground(lipgloss.Color("#fef2f2"))

	mixedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#c2410c")).
			Foreground(lipgloss.Color("#fff7ed"))

	cursorStyle = lipgloss.NewStyle().
			Reverse(true).
			Bold(true)

	markedStyle = lipgloss.NewStyle().
			Underline(true).
			Bold(true)

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#52525b")).
			Padding(0, 1)
)

const helpLine = "←↓↑→/hjkl move · [ ] vegetable · enter place · x clear · m move · t bed/path · s summary · q quit"

// Model is the editor state.
type Model struct {
	ctx        context.Context
	planner    *planner.Planner
	planID     string
	plan       *garden.Plan
	statuses   map[string]companion.Status
	vegetables []catalog.Vegetable

	selected    int
	cx, cy      int
	moveFrom    string
	showSummary bool
	status      string
	err         error
}

// New creates an editor for the plan with the given id.
func New(ctx context.Context, p *planner.Planner, planID string) (Model, error) {
	plan, ok := p.GetPlan(planID)
	if !ok {
		return Model{}, fmt.Errorf("plan not found: %s", planID)
	}
	m := Model{
		ctx:        ctx,
		planner:    p,
		planID:     planID,
		vegetables: p.Catalog().All(),
	}
	m.refresh(plan)
	return m, nil
}

// Run starts the editor and blocks until the user quits.
func Run(ctx context.Context, p *planner.Planner, planID string) error {
	m, err := New(ctx, p, planID)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.err = nil

	switch key.String() {
	case "ctrl+c", "q", "esc":
		if key.String() == "esc" && m.moveFrom != "" {
			m.moveFrom = ""
			m.status = "Move cancelled"
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		m.cy = max(m.cy-1, 0)
	case "down", "j":
		m.cy = min(m.cy+1, m.plan.Height-1)
	case "left", "h":
		m.cx = max(m.cx-1, 0)
	case "right", "l":
		m.cx = min(m.cx+1, m.plan.Width-1)
	case "[":
		if len(m.vegetables) > 0 {
			m.selected = (m.selected - 1 + len(m.vegetables)) % len(m.vegetables)
		}
	case "]":
		if len(m.vegetables) > 0 {
			m.selected = (m.selected + 1) % len(m.vegetables)
		}
	case "enter", " ":
		if v, ok := m.selectedVegetable(); ok {
			m.apply(fmt.Sprintf("Planted %s at %s", v.Name, m.cursorID()), func(ctx context.Context) (*garden.Plan, error) {
				return m.planner.Place(ctx, m.planID, m.cursorID(), v.ID)
			})
		}
	case "x", "backspace", "delete":
		m.apply("Cleared "+m.cursorID(), func(ctx context.Context) (*garden.Plan, error) {
			return m.planner.Remove(ctx, m.planID, m.cursorID())
		})
	case "m":
		if m.moveFrom == "" {
			if c, ok := m.plan.Cell(m.cursorID()); ok && c.Occupied() {
				m.moveFrom = c.ID
				m.status = "Moving from " + c.ID + ": pick the target and press m"
			} else {
				m.status = "Nothing to move here"
			}
			break
		}
		from, to := m.moveFrom, m.cursorID()
		m.moveFrom = ""
		m.apply(fmt.Sprintf("Moved %s to %s", from, to), func(ctx context.Context) (*garden.Plan, error) {
			return m.planner.Move(ctx, m.planID, from, to)
		})
	case "t":
		m.apply("Toggled "+m.cursorID(), func(ctx context.Context) (*garden.Plan, error) {
			return m.planner.ToggleCellType(ctx, m.planID, m.cursorID())
		})
	case "s":
		m.showSummary = !m.showSummary
	}
	return m, nil
}

// apply runs one planner operation and reloads the plan.
func (m *Model) apply(done string, op func(ctx context.Context) (*garden.Plan, error)) {
	before := m.plan
	next, err := op(m.ctx)
	if err != nil {
		m.err = err
	}
	if next == nil {
		if err == nil {
			m.err = fmt.Errorf("plan %s no longer exists", m.planID)
		}
		return
	}
	m.refresh(next)
	if shopping.Fingerprint(next) == shopping.Fingerprint(before) {
		m.status = "Nothing changed"
		return
	}
	m.status = done
}

func (m *Model) refresh(plan *garden.Plan) {
	m.plan = plan
	m.statuses, _ = m.planner.CompanionStatuses(m.planID)
	m.cx = min(m.cx, plan.Width-1)
	m.cy = min(m.cy, plan.Height-1)
}

func (m Model) cursorID() string {
	return garden.CellID(m.cx, m.cy)
}

func (m Model) selectedVegetable() (catalog.Vegetable, bool) {
	if len(m.vegetables) == 0 {
		return catalog.Vegetable{}, false
	}
	return m.vegetables[m.selected], true
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %dx%d · %d cm", m.plan.Title, m.plan.Width, m.plan.Height, m.plan.GridCellSizeCm)))
	b.WriteString("\n\n")

	grid := m.renderGrid()
	if m.showSummary {
		grid = lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", m.renderSummary())
	}
	b.WriteString(grid)
	b.WriteString("\n\n")

	if v, ok := m.selectedVegetable(); ok {
		b.WriteString("Selected: " + v.Label())
	}
	b.WriteString(secondaryStyle.Render(fmt.Sprintf("   cursor %s", m.cursorID())))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	} else if m.status != "" {
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(secondaryStyle.Render(helpLine))
	return b.String()
}

func (m Model) renderGrid() string {
	var rows []string
	for y := 0; y < m.plan.Height; y++ {
		var cells []string
		for x := 0; x < m.plan.Width; x++ {
			c, _ := m.plan.CellAt(x, y)
			cells = append(cells, m.renderCell(c))
		}
		rows = append(rows, strings.Join(cells, ""))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderCell(c garden.Cell) string {
	text := "    "
	style := bedStyle
	if c.Type == garden.CellPathway {
		style = pathwayStyle
		text = " ░░ "
	}
	if c.Occupied() {
		if v, ok := m.planner.Catalog().Get(c.Content); ok {
			text = " " + export.Abbrev(v) + " "
		} else {
			text = " ?? "
		}
		st := m.statuses[c.ID]
		switch {
		case st.HasGoodNeighbor && st.HasBadNeighbor:
			style = mixedStyle
		case st.HasBadNeighbor:
			style = badStyle
		case st.HasGoodNeighbor:
			style = goodStyle
		}
	}
	if c.ID == m.moveFrom {
		style = style.Inherit(markedStyle)
	}
	if c.X == m.cx && c.Y == m.cy {
		style = cursorStyle.Inherit(style)
	}
	return style.Render(text)
}

func (m Model) renderSummary() string {
	s, ok := m.planner.Summarize(m.planID)
	if !ok {
		return ""
	}
	return panelStyle.Render(strings.TrimRight(export.SummaryText("Summary", *s), "\n"))
}
