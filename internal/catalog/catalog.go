// Package catalog holds the read-only vegetable reference data shared by
// the grid editor, the companion evaluator and the summary aggregator.
//
// The default catalog is embedded; an optional user file extends it and
// overrides entries with the same id.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vegetables.yaml
var defaultCatalogYAML []byte

// ErrInvalidVegetable is returned for catalog entries that fail validation.
var ErrInvalidVegetable = errors.New("invalid vegetable")

// File is the on-disk catalog document.
type File struct {
	Vegetables []Vegetable `yaml:"vegetables"`
}

// Catalog is an ordered, id-indexed set of vegetables.
type Catalog struct {
	vegetables []Vegetable
	byID       map[string]int
}

// New builds a catalog, rejecting invalid or duplicate entries.
func New(vegetables []Vegetable) (*Catalog, error) {
	c := &Catalog{
		vegetables: make([]Vegetable, 0, len(vegetables)),
		byID:       make(map[string]int, len(vegetables)),
	}
	for _, v := range vegetables {
		if err := v.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[v.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidVegetable, v.ID)
		}
		c.byID[v.ID] = len(c.vegetables)
		c.vegetables = append(c.vegetables, v)
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	vegetables, err := parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	c, err := New(vegetables)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load returns the embedded catalog merged with the user file at path.
// An empty path or a missing file yields the embedded catalog.
func Load(path string) (*Catalog, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	extra, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return base.Merge(extra)
}

// Merge returns a new catalog where extra entries replace entries with the
// same id and unknown ids are appended.
func (c *Catalog) Merge(extra []Vegetable) (*Catalog, error) {
	merged := make([]Vegetable, len(c.vegetables))
	copy(merged, c.vegetables)
	index := make(map[string]int, len(c.byID))
	for id, i := range c.byID {
		index[id] = i
	}
	for _, v := range extra {
		if i, ok := index[v.ID]; ok {
			merged[i] = v
			continue
		}
		index[v.ID] = len(merged)
		merged = append(merged, v)
	}
	return New(merged)
}

// Get looks a vegetable up by id.
func (c *Catalog) Get(id string) (Vegetable, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Vegetable{}, false
	}
	return c.vegetables[i], true
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Find resolves user input by id first, then by case-insensitive name.
func (c *Catalog) Find(query string) (Vegetable, bool) {
	query = strings.TrimSpace(query)
	if v, ok := c.Get(query); ok {
		return v, true
	}
	for _, v := range c.vegetables {
		if strings.EqualFold(v.ID, query) || strings.EqualFold(v.Name, query) {
			return v, true
		}
	}
	return Vegetable{}, false
}

// All returns the vegetables in catalog order.
func (c *Catalog) All() []Vegetable {
	out := make([]Vegetable, len(c.vegetables))
	copy(out, c.vegetables)
	return out
}

// IDs returns the vegetable ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.vegetables))
	for i, v := range c.vegetables {
		ids[i] = v.ID
	}
	return ids
}

// Len returns the number of vegetables.
func (c *Catalog) Len() int {
	return len(c.vegetables)
}

// ReadFile reads a user catalog file. A missing file is not an error.
func ReadFile(path string) ([]Vegetable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	vegetables, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return vegetables, nil
}

// Upsert writes v into the user catalog file at path, replacing an entry
// with the same id.
func Upsert(path string, v Vegetable) error {
	if err := v.Validate(); err != nil {
		return err
	}
	existing, err := ReadFile(path)
	if err != nil {
		return err
	}

	replaced := false
	for i := range existing {
		if existing[i].ID == v.ID {
			existing[i] = v
			replaced = true
			break
		}
	}
	if !replaced {
		existing = append(existing, v)
	}

	data, err := yaml.Marshal(File{Vegetables: existing})
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func parse(data []byte) ([]Vegetable, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Vegetables, nil
}

// UserFile is a user catalog file that new entries are written to.
type UserFile string

// Upsert writes v into the file.
func (f UserFile) Upsert(v Vegetable) error {
	return Upsert(string(f), v)
}
