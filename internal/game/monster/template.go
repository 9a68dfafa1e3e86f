// Package monster provides monster template definitions and spawning.
package monster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/loot"
	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

// OnHit is an effect a monster may attach with each landed blow.
type OnHit struct {
	Effect string `yaml:"effect"`
	Chance int    `yaml:"chance"`
}

// Template defines a reusable monster archetype loaded from YAML.
type Template struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Level       int                `yaml:"level"`
	Health      float64            `yaml:"health"`
	Mana        float64            `yaml:"mana"`
	Attributes  map[string]float64 `yaml:"attributes"`
	MinDamage   float64            `yaml:"min_damage"`
	MaxDamage   float64            `yaml:"max_damage"`
	XPReward    int                `yaml:"xp_reward"`
	// QuestRelation is matched against kill quest requirements.
	QuestRelation string `yaml:"quest_relation"`
	Respawnable   bool   `yaml:"respawnable"`
	// DeathScript names a Lua script run once per character on first kill.
	DeathScript string      `yaml:"death_script"`
	OnHit       *OnHit      `yaml:"on_hit"`
	Loot        *loot.Table `yaml:"loot"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1,
// Health > 0, the damage range is ordered, attributes are known, and the
// loot table and on-hit chance are valid; returns the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("monster template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("monster template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("monster template %q: level must be >= 1", t.ID)
	}
	if t.Health <= 0 {
		return fmt.Errorf("monster template %q: health must be > 0", t.ID)
	}
	if t.MinDamage < 0 || t.MaxDamage < t.MinDamage {
		return fmt.Errorf("monster template %q: damage range [%g, %g] is invalid", t.ID, t.MinDamage, t.MaxDamage)
	}
	if t.XPReward < 0 {
		return fmt.Errorf("monster template %q: xp_reward must be >= 0", t.ID)
	}
	if _, err := t.attributes(); err != nil {
		return fmt.Errorf("monster template %q: %w", t.ID, err)
	}
	if t.OnHit != nil && (t.OnHit.Effect == "" || t.OnHit.Chance < 1 || t.OnHit.Chance > 100) {
		return fmt.Errorf("monster template %q: on_hit needs an effect and a chance in [1, 100]", t.ID)
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			return fmt.Errorf("monster template %q: %w", t.ID, err)
		}
	}
	return nil
}

func (t *Template) attributes() (map[stat.Key]float64, error) {
	out := make(map[stat.Key]float64, len(t.Attributes))
	for name, v := range t.Attributes {
		k, err := stat.ParseKey(name)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Spawn creates a live monster from t with a fresh guid.
//
// Precondition: t passed Validate.
// Postcondition: the monster is alive, interactable and at full health.
func (t *Template) Spawn() *entity.Monster {
	attrs, _ := t.attributes()
	cfg := entity.MonsterConfig{
		GUID:            uuid.New().String(),
		TemplateID:      t.ID,
		Name:            t.Name,
		Level:           t.Level,
		Health:          t.Health,
		Mana:            t.Mana,
		Attributes:      attrs,
		MinDamage:       t.MinDamage,
		MaxDamage:       t.MaxDamage,
		XPReward:        t.XPReward,
		Loot:            t.Loot,
		QuestRelationID: t.QuestRelation,
		Respawnable:     t.Respawnable,
		DeathScript:     t.DeathScript,
	}
	if t.OnHit != nil {
		cfg.OnHitEffect = t.OnHit.Effect
		cfg.OnHitChance = t.OnHit.Chance
	}
	return entity.NewMonster(cfg)
}

// LoadTemplateFromBytes parses a single monster template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates
// ordered by id.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}
