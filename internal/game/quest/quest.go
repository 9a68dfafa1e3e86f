// Package quest tracks "kill N of X" quests accepted by a character.
package quest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownQuest is returned when a quest id has no definition.
	ErrUnknownQuest = errors.New("unknown quest")
	// ErrLevelTooLow is returned when a character cannot yet accept a quest.
	ErrLevelTooLow = errors.New("level too low for quest")
	// ErrAlreadyAccepted is returned when the quest is already in the log.
	ErrAlreadyAccepted = errors.New("quest already accepted")
)

// KillQuest requires killing RequiredKills monsters whose quest relation id
// is RequiredMonster.
type KillQuest struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	RequiredMonster string `yaml:"required_monster"`
	RequiredKills   int    `yaml:"required_kills"`
	XPReward        int    `yaml:"xp_reward"`
	LevelRequired   int    `yaml:"level_required"`
}

// Validate checks that q is well formed.
func (q *KillQuest) Validate() error {
	var errs []error
	if q.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if q.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if q.RequiredMonster == "" {
		errs = append(errs, errors.New("required_monster must not be empty"))
	}
	if q.RequiredKills < 1 {
		errs = append(errs, errors.New("required_kills must be >= 1"))
	}
	if q.XPReward < 0 {
		errs = append(errs, errors.New("xp_reward must be >= 0"))
	}
	if q.LevelRequired < 1 {
		errs = append(errs, errors.New("level_required must be >= 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("quest %q: %v", q.ID, errs)
	}
	return nil
}

func (q *KillQuest) String() string {
	return fmt.Sprintf("%s - Requires %d %s kills. Rewards %d experience.",
		q.Name, q.RequiredKills, q.RequiredMonster, q.XPReward)
}

// Registry holds quest definitions keyed by id.
type Registry struct {
	quests map[string]*KillQuest
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{quests: make(map[string]*KillQuest)}
}

// Register adds q, replacing any definition with the same id.
//
// Precondition: q passed Validate.
func (r *Registry) Register(q *KillQuest) {
	r.quests[q.ID] = q
}

// Get returns the quest with id, or ErrUnknownQuest.
func (r *Registry) Get(id string) (*KillQuest, error) {
	q, ok := r.quests[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuest, id)
	}
	return q, nil
}

// All returns every quest ordered by id.
func (r *Registry) All() []*KillQuest {
	out := make([]*KillQuest, 0, len(r.quests))
	for _, q := range r.quests {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml/*.yml file in dir as a KillQuest.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading quest directory %q: %w", dir, err)
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
		var q KillQuest
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&q); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("invalid quest in %q: %w", path, err)
		}
		reg.Register(&q)
	}
	return reg, nil
}
