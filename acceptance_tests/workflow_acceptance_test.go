package acceptance_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garden-planner/internal/app"
	"garden-planner/internal/config"
	"garden-planner/internal/garden"
	"garden-planner/internal/httpapi"
	"garden-planner/internal/telegram"
)

var secret = []byte("acceptance-secret")

func testConfig(dir string) *config.Config {
	return &config.Config{
		DataDir:          dir,
		DBPath:           filepath.Join(dir, "garden.db"),
		Storage:          config.StorageSQLite,
		PlansFile:        filepath.Join(dir, "plans.json"),
		CatalogPath:      filepath.Join(dir, "vegetables.yaml"),
		Locale:           "en",
		PathwayPlacement: "reject",
		MaxGrid:          20,
		APIJWTSecret:     string(secret),
	}
}

func call(t *testing.T, srv *httptest.Server, token, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// TestFullWorkflow edits one plan through the HTTP API and the chat
// commands, then checks that a restarted app sees every change.
func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := testConfig(dir)
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("plan-%d", n)
	}

	a, err := app.New(ctx, cfg, zap.NewNop(), app.WithIDGenerator(newID))
	require.NoError(t, err)

	// --- Step 1: HTTP API ---
	api := httpapi.NewServer(a.Planner(), secret, zap.NewNop())
	srv := httptest.NewServer(api.Handler())
	token, err := httpapi.IssueToken(secret, "acceptance", time.Hour, time.Now())
	require.NoError(t, err)

	resp := call(t, srv, token, http.MethodPost, "/api/plans", map[string]any{"title": "Kitchen bed", "width": 3, "height": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created garden.Plan
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "plan-1", created.ID)
	assert.Len(t, created.Cells, 6)

	resp = call(t, srv, token, http.MethodPost, "/api/plans/plan-1/place", map[string]string{"cellId": "0-0", "vegetableId": "tomato"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	srv.Close()

	// --- Step 2: chat commands on the same planner ---
	sessions := telegram.NewSessionRepository(a.DB().SQL, nil, 0)
	chat := telegram.NewCommands(a.Planner(), sessions, a.Metrics(), a.SysHealth, 1, nil)

	replies := chat.Handle(ctx, 1, "/use Kitchen bed")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "🍅⬜⬜")

	replies = chat.Handle(ctx, 1, "/place 1 0 basil")
	assert.Equal(t, "✅ Planted at 1-0", replies[0].Text)

	replies = chat.Handle(ctx, 1, "/summary")
	assert.Contains(t, replies[0].Text, "• 🍅 Tomato: 1")
	assert.Contains(t, replies[0].Text, "• 🌿 Basil: 1")

	// unchanged plans reuse the cached summary
	first, ok := a.Planner().Summarize("plan-1")
	require.True(t, ok)
	replies = chat.Handle(ctx, 1, "/place 9 9 basil")
	assert.Equal(t, "⚠️ Nothing changed", replies[0].Text)
	second, ok := a.Planner().Summarize("plan-1")
	require.True(t, ok)
	assert.Equal(t, first, second)

	replies = chat.Handle(ctx, 1, "/metrics")
	assert.Contains(t, replies[0].Text, "• place: 3 (2 applied")
	require.NoError(t, a.Close())

	// --- Step 3: restart ---
	a, err = app.New(ctx, cfg, zap.NewNop(), app.WithIDGenerator(newID))
	require.NoError(t, err)
	defer a.Close()

	plan, ok := a.Planner().GetPlan("plan-1")
	require.True(t, ok)
	assert.Len(t, plan.OccupiedCells(), 2)

	state, err := telegram.NewSessionRepository(a.DB().SQL, nil, 0).Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "plan-1", state.PlanID)

	statuses, ok := a.Planner().CompanionStatuses("plan-1")
	require.True(t, ok)
	assert.True(t, statuses["0-0"].HasGoodNeighbor)
	assert.True(t, statuses["1-0"].HasGoodNeighbor)
}
