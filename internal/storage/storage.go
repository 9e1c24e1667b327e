package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"garden-planner/internal/garden"
)

// fileVersion is written into every plans file.
const fileVersion = 1

type plansFile struct {
	Version int            `json:"version"`
	Plans   []*garden.Plan `json:"plans"`
}

// PlanStore keeps the whole plan collection in one JSON file.
type PlanStore struct {
	path string
}

// NewPlanStore creates a PlanStore and ensures the parent directory exists.
func NewPlanStore(path string) (*PlanStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory for %s: %w", path, err)
	}
	return &PlanStore{path: path}, nil
}

// Path returns the backing file.
func (s *PlanStore) Path() string {
	return s.path
}

// Exists reports whether the plans file has been written.
func (s *PlanStore) Exists() bool {
	_, err := os.Stat(s.path)
	return !os.IsNotExist(err)
}

// LoadAll reads every plan. A missing file is an empty collection.
func (s *PlanStore) LoadAll(_ context.Context) ([]*garden.Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}

	var f plansFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plans file %s: %w", s.path, err)
	}
	return f.Plans, nil
}

// SaveAll replaces the file with plans. The write goes to a temporary file
// first so a crash never leaves a truncated collection behind.
func (s *PlanStore) SaveAll(_ context.Context, plans []*garden.Plan) error {
	if plans == nil {
		plans = []*garden.Plan{}
	}
	data, err := json.MarshalIndent(plansFile{Version: fileVersion, Plans: plans}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plans: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp plans file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write plans file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync plans file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close plans file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace plans file: %w", err)
	}
	return nil
}
