// Package progression awards experience and applies level-ups.
package progression

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
)

// ErrMissingLevel is returned when the growth table has no entry for a level.
// It is a configuration error; progression must not continue past it.
var ErrMissingLevel = errors.New("missing level entry")

// GrowthTable supplies per-level stat growth and experience requirements.
type GrowthTable interface {
	// Growth returns the stat increase granted on reaching level.
	Growth(level int) (entity.Growth, error)
	// XPRequired returns the experience needed to advance past level.
	XPRequired(level int) (int, error)
}

// Level is one row of the level table.
type Level struct {
	Level      int           `yaml:"level"`
	XPRequired int           `yaml:"xp_required"`
	Growth     entity.Growth `yaml:"growth"`
}

// Table is an in-memory GrowthTable.
type Table struct {
	levels map[int]Level
}

// NewTable builds a Table from rows.
//
// Postcondition: returns an error for duplicate levels, levels below 1 or
// non-positive experience requirements.
func NewTable(rows []Level) (*Table, error) {
	t := &Table{levels: make(map[int]Level, len(rows))}
	for _, r := range rows {
		if r.Level < 1 {
			return nil, fmt.Errorf("level table: level must be >= 1, got %d", r.Level)
		}
		if r.XPRequired < 1 {
			return nil, fmt.Errorf("level table: level %d xp_required must be >= 1", r.Level)
		}
		if _, dup := t.levels[r.Level]; dup {
			return nil, fmt.Errorf("level table: duplicate level %d", r.Level)
		}
		t.levels[r.Level] = r
	}
	return t, nil
}

// Growth implements GrowthTable.
func (t *Table) Growth(level int) (entity.Growth, error) {
	r, ok := t.levels[level]
	if !ok {
		return entity.Growth{}, fmt.Errorf("growth for level %d: %w", level, ErrMissingLevel)
	}
	return r.Growth, nil
}

// XPRequired implements GrowthTable.
func (t *Table) XPRequired(level int) (int, error) {
	r, ok := t.levels[level]
	if !ok {
		return 0, fmt.Errorf("xp requirement for level %d: %w", level, ErrMissingLevel)
	}
	return r.XPRequired, nil
}

// Levels returns every row ordered by level.
func (t *Table) Levels() []Level {
	out := make([]Level, 0, len(t.levels))
	for _, r := range t.levels {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

type tableFile struct {
	Levels []Level `yaml:"levels"`
}

// LoadTable reads a YAML level table from path.
//
// Precondition: path is a readable file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level table %q: %w", path, err)
	}
	var f tableFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing level table %q: %w", path, err)
	}
	t, err := NewTable(f.Levels)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return t, nil
}
