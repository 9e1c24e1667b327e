package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"garden-planner/internal/clock"
	metricsdb "garden-planner/internal/metrics/metrics_db"
	"garden-planner/internal/shared"
)

// ExecutionMetric records metadata for a single LLM call.
type ExecutionMetric struct {
	AgentName        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// OperationMetric records one planner operation.
type OperationMetric struct {
	Operation string
	PlanID    string
	Applied   bool
	Latency   time.Duration
	Timestamp time.Time
}

// Recorder receives planner operation metrics.
type Recorder interface {
	RecordOperation(ctx context.Context, m OperationMetric) error
}

var _ Recorder = (*Store)(nil)

// Store handles persistence of metrics to SQLite.
type Store struct {
	queries *metricsdb.Queries
	clock   clock.Clock
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Store{
		queries: metricsdb.New(db),
		clock:   clk,
	}
}

// Record saves an LLM execution metric.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = s.clock.Now()
	}

	err := s.queries.InsertExecutionMetric(ctx, metricsdb.InsertExecutionMetricParams{
		AgentName:        m.AgentName,
		Model:            m.Model,
		PromptTokens:     int64(m.PromptTokens),
		CompletionTokens: int64(m.CompletionTokens),
		LatencyMs:        m.LatencyMS,
		Timestamp:        ts.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to insert execution metric: %w", err)
	}
	return nil
}

// RecordMeta records an LLM call unless it consumed no tokens.
func (s *Store) RecordMeta(ctx context.Context, meta shared.AgentMeta) error {
	if meta.Empty() {
		return nil
	}
	m := MapUsage(meta.AgentName, meta.Usage, meta.Latency)
	m.Timestamp = s.clock.Now()
	return s.Record(ctx, m)
}

// RecordOperation saves a planner operation metric.
func (s *Store) RecordOperation(ctx context.Context, m OperationMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = s.clock.Now()
	}
	err := s.queries.InsertOperationMetric(ctx, metricsdb.InsertOperationMetricParams{
		Operation: m.Operation,
		PlanID:    m.PlanID,
		Applied:   m.Applied,
		LatencyUs: m.Latency.Microseconds(),
		Timestamp: ts.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to insert operation metric: %w", err)
	}
	return nil
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
}

// GetDailyUsage retrieves LLM usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := s.clock.Now().AddDate(0, 0, -days).UTC()
	rows, err := s.queries.GetDailyUsage(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}

	var results []DailyUsage
	for _, r := range rows {
		u := DailyUsage{
			TotalExecution: int(r.Executions),
		}

		switch day := r.Day.(type) {
		case string:
			u.Date = day
		case []byte:
			u.Date = string(day)
		default:
			u.Date = "Unknown"
		}

		if r.PromptTokens.Valid {
			u.TotalPrompt = int(r.PromptTokens.Float64)
		}
		if r.CompletionTokens.Valid {
			u.TotalCompletion = int(r.CompletionTokens.Float64)
		}

		results = append(results, u)
	}
	return results, nil
}

// OperationCount summarises one planner operation over a period.
type OperationCount struct {
	Operation    string
	Total        int
	Applied      int
	AvgLatencyUS float64
}

// GetOperationCounts retrieves planner operation totals for the last N
// days, busiest first.
func (s *Store) GetOperationCounts(ctx context.Context, days int) ([]OperationCount, error) {
	since := s.clock.Now().AddDate(0, 0, -days).UTC()
	rows, err := s.queries.GetOperationCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation counts: %w", err)
	}

	results := make([]OperationCount, 0, len(rows))
	for _, r := range rows {
		c := OperationCount{Operation: r.Operation, Total: int(r.Total)}
		if r.Applied.Valid {
			c.Applied = int(r.Applied.Float64)
		}
		if r.AvgLatencyUs.Valid {
			c.AvgLatencyUS = r.AvgLatencyUs.Float64
		}
		results = append(results, c)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := s.clock.Now().AddDate(0, 0, -olderThanDays).UTC()

	executions, err := s.queries.CleanupExecutionMetrics(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up execution metrics: %w", err)
	}
	operations, err := s.queries.CleanupOperationMetrics(ctx, threshold)
	if err != nil {
		return executions, fmt.Errorf("failed to clean up operation metrics: %w", err)
	}
	return executions + operations, nil
}

// MapUsage converts token usage to an ExecutionMetric.
func MapUsage(agentName string, usage shared.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
	}
}
