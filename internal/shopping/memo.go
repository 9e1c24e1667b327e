package shopping

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"sync"

	"garden-planner/internal/garden"
)

// Memo caches summaries per plan until the plan's cells or cell size change.
type Memo struct {
	agg *Aggregator

	mu      sync.Mutex
	entries map[string]memoEntry
}

type memoEntry struct {
	fingerprint string
	summary     Summary
}

// NewMemo wraps agg with a per-plan cache.
func NewMemo(agg *Aggregator) *Memo {
	return &Memo{agg: agg, entries: make(map[string]memoEntry)}
}

// Summarize returns the cached summary of p, recomputing it when p changed.
func (m *Memo) Summarize(p *garden.Plan) Summary {
	if p == nil {
		return m.agg.Summarize(nil)
	}
	fp := Fingerprint(p)

	m.mu.Lock()
	e, ok := m.entries[p.ID]
	m.mu.Unlock()
	if ok && e.fingerprint == fp {
		return e.summary.clone()
	}

	s := m.agg.Summarize(p)
	m.mu.Lock()
	m.entries[p.ID] = memoEntry{fingerprint: fp, summary: s}
	m.mu.Unlock()
	return s.clone()
}

// Forget drops the cached summary of planID.
func (m *Memo) Forget(planID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, planID)
}

// Fingerprint hashes everything a summary depends on.
func Fingerprint(p *garden.Plan) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%d\n", p.Width, p.Height, p.GridCellSizeCm)
	for _, c := range p.Cells {
		fmt.Fprintf(h, "%s|%s|%s\n", c.ID, c.Type, c.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s Summary) clone() Summary {
	s.VegetableCounts = slices.Clone(s.VegetableCounts)
	s.Schedule = slices.Clone(s.Schedule)
	return s
}
