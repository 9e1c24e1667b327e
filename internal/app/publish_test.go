package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-planner/internal/config"
)

func TestPublishPlan(t *testing.T) {
	ctx := context.Background()

	var posted struct {
		Posts []map[string]string `json:"posts"`
	}
	blog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"posts":[{"id":"post-1","title":"Backyard","status":"published","url":"https://blog.example/backyard/"}]}`))
	}))
	defer blog.Close()

	cfg := testConfig(t, config.StorageSQLite)
	a := newTestApp(t, cfg)
	defer a.Close()

	t.Run("requires ghost settings", func(t *testing.T) {
		_, err := a.PublishPlan(ctx, "plan-1", false)
		assert.EqualError(t, err, "GHOST_URL environment variable not set")
	})

	cfg.GhostURL = blog.URL
	cfg.GhostAdminKey = "integration:00112233445566778899aabbccddeeff"

	plan, err := a.Planner().AddPlan(ctx, "Backyard", 2, 1, 20)
	require.NoError(t, err)
	_, err = a.Planner().Place(ctx, plan.ID, "0-0", "tomato")
	require.NoError(t, err)

	post, err := a.PublishPlan(ctx, plan.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)

	require.Len(t, posted.Posts, 1)
	assert.Equal(t, "Backyard", posted.Posts[0]["title"])
	assert.Equal(t, "published", posted.Posts[0]["status"])
	assert.Contains(t, posted.Posts[0]["html"], `id="cell-0-0"`)
	assert.NotContains(t, posted.Posts[0]["html"], "<html")

	post, err = a.PublishPlan(ctx, "missing", false)
	assert.NoError(t, err)
	assert.Nil(t, post)
}
