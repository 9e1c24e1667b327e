package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garden-planner/internal/clock"
	"garden-planner/internal/database"
	"garden-planner/internal/shared"
)

func newTestStore(t *testing.T, clk clock.Clock) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL, clk)
}

func TestStore_DailyUsage(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, clk)

	require.NoError(t, store.RecordMeta(ctx, shared.AgentMeta{
		AgentName: "Clipper",
		Usage:     shared.TokenUsage{PromptTokens: 100, CompletionTokens: 20, Model: "llama"},
		Latency:   1500 * time.Millisecond,
	}))
	require.NoError(t, store.Record(ctx, ExecutionMetric{
		AgentName: "Clipper", Model: "llama", PromptTokens: 50, CompletionTokens: 5,
		Timestamp: clk.Now().Add(-24 * time.Hour),
	}))
	// no tokens, not recorded
	require.NoError(t, store.RecordMeta(ctx, shared.AgentMeta{AgentName: "Clipper"}))

	usage, err := store.GetDailyUsage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, DailyUsage{Date: "2025-05-10", TotalPrompt: 100, TotalCompletion: 20, TotalExecution: 1}, usage[0])
	assert.Equal(t, DailyUsage{Date: "2025-05-09", TotalPrompt: 50, TotalCompletion: 5, TotalExecution: 1}, usage[1])
}

func TestStore_OperationsAndCleanup(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, clk)

	for _, m := range []OperationMetric{
		{Operation: "place", PlanID: "p1", Applied: true, Latency: 40 * time.Microsecond},
		{Operation: "place", PlanID: "p1", Applied: false, Latency: 20 * time.Microsecond},
		{Operation: "resize", PlanID: "p1", Applied: true, Latency: 90 * time.Microsecond},
		{Operation: "remove", PlanID: "p1", Applied: true, Timestamp: clk.Now().AddDate(0, 0, -40)},
	} {
		require.NoError(t, store.RecordOperation(ctx, m))
	}

	counts, err := store.GetOperationCounts(ctx, 7)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, OperationCount{Operation: "place", Total: 2, Applied: 1, AvgLatencyUS: 30}, counts[0])
	assert.Equal(t, "resize", counts[1].Operation)

	removed, err := store.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "2.0 MiB", FormatBytes(2*1024*1024))
}

func TestGetSysHealth(t *testing.T) {
	t.Run("empty data directory", func(t *testing.T) {
		dir := t.TempDir()
		h := GetSysHealth(DataPaths{Dir: dir, PlansFile: filepath.Join(dir, "plans.json")}, GardenStats{})
		assert.Positive(t, h.Goroutines)
		assert.Equal(t, "0 B", h.DataDiskSize)
		assert.Equal(t, "-", h.Storage.PlansFile)
		assert.Equal(t, "-", h.Storage.Database)
	})

	t.Run("per store sizes", func(t *testing.T) {
		dir := t.TempDir()
		paths := DataPaths{
			Dir:       dir,
			Database:  filepath.Join(dir, "garden.db"),
			PlansFile: filepath.Join(dir, "plans.json"),
			Catalog:   filepath.Join(dir, "vegetables.yaml"),
		}
		require.NoError(t, os.WriteFile(paths.Database, make([]byte, 1024), 0o644))
		require.NoError(t, os.WriteFile(paths.Database+"-wal", make([]byte, 512), 0o644))
		require.NoError(t, os.WriteFile(paths.Catalog, make([]byte, 100), 0o644))

		stats := GardenStats{Plans: 2, PlantedCells: 7, Vegetables: 15}
		h := GetSysHealth(paths, stats)
		assert.Equal(t, "1.6 KiB", h.DataDiskSize)
		assert.Equal(t, StorageSizes{Total: "1.6 KiB", Database: "1.5 KiB", PlansFile: "-", Catalog: "100 B"}, h.Storage)
		assert.Equal(t, stats, h.Garden)
	})
}
