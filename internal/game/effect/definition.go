package effect

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

// Kind constants for Definition.Kind.
const (
	KindBuff = "buff"
	KindDoT  = "dot"
)

// ErrUnknownEffect is returned when a definition id is not registered.
var ErrUnknownEffect = errors.New("unknown effect")

// DamageDef is the per-tick damage of a DoT definition.
type DamageDef struct {
	Physical float64 `yaml:"physical"`
	Magical  float64 `yaml:"magical"`
}

// Definition is the static description of an effect, loaded from YAML.
type Definition struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Kind        string             `yaml:"kind"`
	Duration    int                `yaml:"duration"`
	Attributes  map[string]float64 `yaml:"attributes"`
	Damage      DamageDef          `yaml:"damage"`
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff id and name are set, kind is buff or dot,
// duration >= 1, a buff names only known attributes, and a dot deals
// non-negative damage with at least one positive component.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return errors.New("effect: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("effect %q: name must not be empty", d.ID)
	}
	if d.Duration < 1 {
		return fmt.Errorf("effect %q: duration must be >= 1, got %d", d.ID, d.Duration)
	}
	switch d.Kind {
	case KindBuff:
		if len(d.Attributes) == 0 {
			return fmt.Errorf("effect %q: buff must modify at least one attribute", d.ID)
		}
		if _, err := d.deltas(); err != nil {
			return fmt.Errorf("effect %q: %w", d.ID, err)
		}
	case KindDoT:
		if d.Damage.Physical < 0 || d.Damage.Magical < 0 {
			return fmt.Errorf("effect %q: dot damage must not be negative", d.ID)
		}
		if d.Damage.Physical+d.Damage.Magical <= 0 {
			return fmt.Errorf("effect %q: dot must deal damage", d.ID)
		}
	default:
		return fmt.Errorf("effect %q: kind must be one of [buff, dot], got %q", d.ID, d.Kind)
	}
	return nil
}

func (d *Definition) deltas() (stat.Deltas, error) {
	out := make(stat.Deltas, len(d.Attributes))
	for name, v := range d.Attributes {
		k, err := stat.ParseKey(name)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Instantiate builds a live Effect from the definition. sourceLevel is the
// level of the caster and only matters for DoTs.
//
// Precondition: d has passed Validate.
func (d *Definition) Instantiate(sourceLevel int) Effect {
	if d.Kind == KindDoT {
		return NewDoT(d.Name, d.Duration, damage.New(d.Damage.Physical, d.Damage.Magical), sourceLevel)
	}
	deltas, _ := d.deltas()
	return NewBuff(d.Name, d.Duration, deltas)
}

// Registry holds all known Definitions keyed by ID.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds def, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Definition) {
	r.defs[def.ID] = def
}

// Get returns the Definition for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// New instantiates the effect registered under id.
//
// Postcondition: Returns an error wrapping ErrUnknownEffect if id is not registered.
func (r *Registry) New(id string, sourceLevel int) (Effect, error) {
	d, ok := r.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, id)
	}
	return d.Instantiate(sourceLevel), nil
}

// All returns a snapshot of all registered definitions ordered by ID.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses and validates each as
// a Definition, and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
