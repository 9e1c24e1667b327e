package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-planner/internal/catalog"
	"garden-planner/internal/clock"
	"garden-planner/internal/garden"
	"garden-planner/internal/metrics"
	"garden-planner/internal/planner"
)

const (
	userID  = int64(11)
	adminID = int64(1)
)

type memPersister struct {
	plans []*garden.Plan
}

func (m *memPersister) LoadAll(ctx context.Context) ([]*garden.Plan, error) {
	return m.plans, nil
}

func (m *memPersister) SaveAll(ctx context.Context, plans []*garden.Plan) error {
	m.plans = plans
	return nil
}

type memSessions struct {
	states  map[string]ChatState
	loadErr error
}

func (m *memSessions) Load(ctx context.Context, userID string) (ChatState, error) {
	if m.loadErr != nil {
		return ChatState{}, m.loadErr
	}
	return m.states[userID], nil
}

func (m *memSessions) Save(ctx context.Context, userID string, st ChatState) error {
	m.states[userID] = st
	return nil
}

type fakeUsage struct{}

func (fakeUsage) GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return []metrics.DailyUsage{{Date: "2025-03-01", TotalPrompt: 100, TotalCompletion: 20, TotalExecution: 2}}, nil
}

func (fakeUsage) GetOperationCounts(ctx context.Context, days int) ([]metrics.OperationCount, error) {
	return []metrics.OperationCount{{Operation: "place", Total: 3, Applied: 2, AvgLatencyUS: 41}}, nil
}

type fixture struct {
	cmds     *Commands
	planner  *planner.Planner
	sessions *memSessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	n := 0
	p, err := planner.New(context.Background(), planner.Deps{
		Catalog:   catalog.Default(),
		Persister: &memPersister{},
		Clock:     clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		NewID: func() string {
			n++
			return fmt.Sprintf("plan-%d", n)
		},
	})
	require.NoError(t, err)

	sessions := &memSessions{states: map[string]ChatState{}}
	health := func() metrics.SysHealth {
		return metrics.SysHealth{
			AllocMB: 3, SysMB: 9, Goroutines: 4, DataDiskSize: "1.0 KiB",
			Storage: metrics.StorageSizes{Total: "1.0 KiB", Database: "900 B", PlansFile: "-", Catalog: "124 B"},
			Garden:  metrics.GardenStats{Plans: 2, PlantedCells: 5, Vegetables: 12},
		}
	}
	return &fixture{
		cmds:     NewCommands(p, sessions, fakeUsage{}, health, adminID, nil),
		planner:  p,
		sessions: sessions,
	}
}

func (f *fixture) send(t *testing.T, text string) []Reply {
	t.Helper()
	replies := f.cmds.Handle(context.Background(), userID, text)
	require.NotEmpty(t, replies, text)
	return replies
}

func (f *fixture) state() ChatState {
	return f.sessions.states["11"]
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text     string
		wantName string
		wantArgs []string
	}{
		{text: "/plans", wantName: "plans", wantArgs: []string{}},
		{text: "/Place@GardenBot 1  2 basil", wantName: "place", wantArgs: []string{"1", "2", "basil"}},
		{text: "  /new 3 2 Back yard ", wantName: "new", wantArgs: []string{"3", "2", "Back", "yard"}},
		{text: "hello", wantName: ""},
		{text: "", wantName: ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, args := parseCommand(tt.text)
			assert.Equal(t, tt.wantName, name)
			if tt.wantName != "" {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestHandle_HelpAndUnknown(t *testing.T) {
	f := newFixture(t)

	replies := f.send(t, "what can you do?")
	assert.True(t, replies[0].Markdown)
	assert.Contains(t, replies[0].Text, "/place X Y [VEG]")

	replies = f.send(t, "/dance")
	assert.Equal(t, "Unknown command /dance. Send /help for the list.", replies[0].Text)
}

func TestHandle_CreateAndSelectPlans(t *testing.T) {
	f := newFixture(t)

	replies := f.send(t, "/plans")
	assert.Contains(t, replies[0].Text, "No plans yet")

	replies = f.send(t, "/new 3 2 Back yard")
	require.Len(t, replies, 2)
	assert.Equal(t, "✅ Created *Back yard*", replies[0].Text)
	assert.Contains(t, replies[1].Text, "🗺 *Back yard* (3x2, 20 cm cells)")
	assert.Contains(t, replies[1].Text, "⬜⬜⬜\n⬜⬜⬜\n")
	assert.Equal(t, "plan-1", f.state().PlanID)

	replies = f.send(t, "/new 2 2 25 Herbs")
	assert.Contains(t, replies[1].Text, "(2x2, 25 cm cells)")
	assert.Equal(t, "plan-2", f.state().PlanID)

	replies = f.send(t, "/plans")
	assert.Contains(t, replies[0].Text, "👉 `plan-2` Herbs (2x2, 0 planted)")
	assert.Contains(t, replies[0].Text, "• `plan-1` Back yard (3x2, 0 planted)")

	replies = f.send(t, "/use back yard")
	assert.Contains(t, replies[0].Text, "*Back yard*")
	assert.Equal(t, "plan-1", f.state().PlanID)

	replies = f.send(t, "/use nowhere")
	assert.Equal(t, "Plan not found: nowhere", replies[0].Text)
	assert.Equal(t, "plan-1", f.state().PlanID)
}

func TestHandle_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		text string
		want string
	}{
		{text: "/new 3", want: "usage: /new W H [CM] title"},
		{text: "/new a b Yard", want: "usage: /new W H [CM] title"},
		{text: "/new 0 2 Yard", want: "❌ invalid plan dimensions"},
		{text: "/new 3 2 20", want: "❌ plan title must not be empty"},
		{text: "/new 3 2 5 Yard", want: "❌ invalid cell size"},
		{text: "/place 1", want: "usage: /place X Y [VEG]"},
		{text: "/move 0 0 1", want: "usage: /move X1 Y1 X2 Y2"},
		{text: "/resize 4", want: "usage: /resize W H"},
		{text: "/show", want: noPlanText},
		{text: "/summary", want: noPlanText},
		{text: "/remove 0 0", want: noPlanText},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			replies := f.send(t, tt.text)
			assert.True(t, strings.HasPrefix(replies[0].Text, tt.want), replies[0].Text)
			assert.False(t, replies[0].Markdown)
		})
	}
	assert.Empty(t, f.planner.ListPlans())
}

func TestHandle_Editing(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/new 3 2 Back yard")

	replies := f.send(t, "/place 0 0")
	assert.Equal(t, "No vegetable selected. Use /select VEG or /place X Y VEG.", replies[0].Text)

	replies = f.send(t, "/select Basil")
	assert.Equal(t, "Selected 🌿 Basil", replies[0].Text)
	assert.Equal(t, ChatState{PlanID: "plan-1", VegetableID: "basil"}, f.state())

	replies = f.send(t, "/select dragonfruit")
	assert.Contains(t, replies[0].Text, "Unknown vegetable dragonfruit")

	replies = f.send(t, "/place 0 0")
	assert.Equal(t, "✅ Planted at 0-0", replies[0].Text)
	assert.Contains(t, replies[1].Text, "🌿⬜⬜\n")

	f.send(t, "/place 1 0 tomato")
	replies = f.send(t, "/place 9 9")
	assert.Equal(t, "⚠️ Nothing changed", replies[0].Text)

	replies = f.send(t, "/place 2 0 potato")
	assert.Contains(t, replies[1].Text, "⚠️ Bad neighbours at 1-0, 2-0")

	replies = f.send(t, "/move 2 0 2 1")
	assert.Equal(t, "✅ Moved 2-0 to 2-1", replies[0].Text)

	replies = f.send(t, "/toggle 0 1")
	assert.Equal(t, "✅ Toggled 0-1", replies[0].Text)
	assert.Contains(t, replies[1].Text, "⬛⬜🥔\n")

	replies = f.send(t, "/remove 0 0")
	assert.Equal(t, "✅ Cleared 0-0", replies[0].Text)

	replies = f.send(t, "/resize 2 2")
	assert.Equal(t, "✅ Resized to 2x2", replies[0].Text)

	plan, ok := f.planner.GetPlan("plan-1")
	require.True(t, ok)
	assert.Equal(t, 2, plan.Width)
	assert.Len(t, plan.OccupiedCells(), 1)

	replies = f.send(t, "/resize 0 2")
	assert.True(t, strings.HasPrefix(replies[0].Text, "❌ invalid plan dimensions"))
}

func TestHandle_SummaryAndList(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/new 2 2 Back yard")
	f.send(t, "/place 0 0 tomato")
	f.send(t, "/place 1 0 tomato")

	replies := f.send(t, "/summary")
	require.True(t, replies[0].Markdown)
	assert.Contains(t, replies[0].Text, "🧾 *Back yard*")
	assert.Contains(t, replies[0].Text, "• 🍅 Tomato: 2")
	assert.Contains(t, replies[0].Text, "• Magnesium lime: 16 g")

	replies = f.send(t, "/list")
	assert.False(t, replies[0].Markdown)
	assert.Contains(t, replies[0].Text, "[Seedlings]\n- Tomato: 2 plants")
}

func TestHandle_DuplicateAndDelete(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/new 2 2 Front")
	f.send(t, "/place 0 0 carrot")

	replies := f.send(t, "/dup")
	assert.Equal(t, "✅ Switched to *Front (copy)*", replies[0].Text)
	assert.Equal(t, "plan-2", f.state().PlanID)

	replies = f.send(t, "/delete")
	assert.Equal(t, "🗑 Deleted Front (copy)", replies[0].Text)
	assert.Empty(t, f.state().PlanID)
	assert.Len(t, f.planner.ListPlans(), 1)

	f.send(t, "/use plan-1")
	_, err := f.planner.DeletePlan(context.Background(), "plan-1")
	require.NoError(t, err)

	replies = f.send(t, "/show")
	assert.Equal(t, noPlanText, replies[0].Text)
	assert.Empty(t, f.state().PlanID)
}

func TestHandle_Metrics(t *testing.T) {
	f := newFixture(t)

	replies := f.send(t, "/metrics")
	assert.Contains(t, replies[0].Text, "Admin only")

	replies = f.cmds.Handle(context.Background(), adminID, "/metrics")
	require.Len(t, replies, 1)
	text := replies[0].Text
	assert.Contains(t, text, "• place: 3 (2 applied, avg 41µs)")
	assert.Contains(t, text, "• *2025-03-01*: 120 tokens (2 execs)")
	assert.Contains(t, text, "• Goroutines: 4")
	assert.Contains(t, text, "• Disk Data: 1.0 KiB (db 900 B, plans file -, catalog 124 B)")
	assert.Contains(t, text, "• Garden: 2 plans, 5 planted cells, 12 vegetables")
}

func TestHandle_SessionLoadFailure(t *testing.T) {
	f := newFixture(t)
	f.sessions.loadErr = errors.New("disk full")

	replies := f.send(t, "/new 2 2 Yard")
	assert.Equal(t, "✅ Created *Yard*", replies[0].Text)
	assert.Equal(t, "plan-1", f.sessions.states["11"].PlanID)
}
