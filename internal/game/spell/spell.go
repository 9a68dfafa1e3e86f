// Package spell defines castable spells and resolves casting them in combat.
package spell

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/effect"
)

// Kind constants for Definition.Kind.
const (
	KindDamage         = "damage"
	KindHeal           = "heal"
	KindHolyHeal       = "holy_heal"
	KindProtectiveHeal = "protective_heal"
	KindEffect         = "effect"
)

var validKinds = map[string]bool{
	KindDamage:         true,
	KindHeal:           true,
	KindHolyHeal:       true,
	KindProtectiveHeal: true,
	KindEffect:         true,
}

// ErrUnknownSpell is returned for a spell name that is not defined or not known.
var ErrUnknownSpell = errors.New("unknown spell")

// Range is an inclusive min/max amount.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Definition is a spell loaded from YAML. School is physical or magical and
// only applies to damage spells.
type Definition struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	Rank          int     `yaml:"rank"`
	LevelRequired int     `yaml:"level_required"`
	ManaCost      float64 `yaml:"mana_cost"`
	Kind          string  `yaml:"kind"`
	School        string  `yaml:"school"`
	Amount        Range   `yaml:"amount"`
	Effect        string  `yaml:"effect"`
}

// Validate checks d's own fields.
func (d *Definition) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.Rank < 1 {
		errs = append(errs, errors.New("rank must be >= 1"))
	}
	if d.LevelRequired < 1 {
		errs = append(errs, errors.New("level_required must be >= 1"))
	}
	if d.ManaCost < 0 {
		errs = append(errs, errors.New("mana_cost must be >= 0"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("kind %q is unknown", d.Kind))
	}
	if d.Kind == KindEffect {
		if d.Effect == "" {
			errs = append(errs, errors.New("effect spells need an effect id"))
		}
	} else if d.Amount.Min < 0 || d.Amount.Max < d.Amount.Min {
		errs = append(errs, fmt.Errorf("amount range [%g, %g] is invalid", d.Amount.Min, d.Amount.Max))
	}
	if d.Kind == KindDamage && d.School != "physical" && d.School != "magical" {
		errs = append(errs, fmt.Errorf("school must be physical or magical, got %q", d.School))
	}
	if len(errs) > 0 {
		return fmt.Errorf("spell %q: %v", d.ID, errs)
	}
	return nil
}

// Registry holds spell definitions by id and by case-insensitive name.
type Registry struct {
	byID   map[string]*Definition
	byName map[string]*Definition
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Definition), byName: make(map[string]*Definition)}
}

// Register adds d.
//
// Precondition: d passed Validate.
// Postcondition: returns an error if the id or name is already registered.
func (r *Registry) Register(d *Definition) error {
	key := strings.ToLower(d.Name)
	if _, ok := r.byID[d.ID]; ok {
		return fmt.Errorf("spell %q already registered", d.ID)
	}
	if _, ok := r.byName[key]; ok {
		return fmt.Errorf("spell name %q already registered", d.Name)
	}
	r.byID[d.ID] = d
	r.byName[key] = d
	return nil
}

// Get returns the spell with id.
func (r *Registry) Get(id string) (*Definition, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpell, id)
	}
	return d, nil
}

// ByName returns the spell named name, ignoring case and surrounding space.
func (r *Registry) ByName(name string) (*Definition, error) {
	d, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpell, name)
	}
	return d, nil
}

// All returns every spell ordered by id.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml/*.yml file in dir as a spell Definition.
// Effect spells must reference an effect present in effects.
//
// Postcondition: a reference to a missing effect is a load error.
func LoadDirectory(dir string, effects *effect.Registry) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading spell directory %q: %w", dir, err)
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
		var d Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("invalid spell in %q: %w", path, err)
		}
		if d.Kind == KindEffect {
			if _, ok := effects.Get(d.Effect); !ok {
				return nil, fmt.Errorf("spell %q in %q: %w: %q", d.ID, path, effect.ErrUnknownEffect, d.Effect)
			}
		}
		if err := reg.Register(&d); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}
