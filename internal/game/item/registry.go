package item

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownItem is returned when an item id has no definition.
var ErrUnknownItem = errors.New("unknown item")

// Registry holds item definitions keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register adds def. A duplicate ID is an error.
//
// Precondition: def passed Validate.
func (r *Registry) Register(def *Def) error {
	if _, ok := r.defs[def.ID]; ok {
		return fmt.Errorf("item %q already registered", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the definition for id.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every definition ordered by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml/*.yml file in dir as an item Def.
//
// Precondition: dir is a readable directory.
// Postcondition: returns a Registry of valid definitions or the first error.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading item directory %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var d Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if d.MaxStack == 0 {
			d.MaxStack = 1
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("invalid item in %q: %w", path, err)
		}
		if err := reg.Register(&d); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}
