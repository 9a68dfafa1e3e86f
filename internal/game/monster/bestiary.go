package monster

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/item"
)

// ErrUnknownTemplate is returned when a template id is not in the bestiary.
var ErrUnknownTemplate = errors.New("unknown monster template")

// Bestiary indexes templates by id.
type Bestiary struct {
	templates map[string]*Template
	order     []string
}

// NewBestiary indexes templates, rejecting duplicate ids.
func NewBestiary(templates []*Template) (*Bestiary, error) {
	b := &Bestiary{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, ok := b.templates[t.ID]; ok {
			return nil, fmt.Errorf("duplicate monster template %q", t.ID)
		}
		b.templates[t.ID] = t
		b.order = append(b.order, t.ID)
	}
	return b, nil
}

// Template returns the template with id.
func (b *Bestiary) Template(id string) (*Template, error) {
	t, ok := b.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return t, nil
}

// IDs returns every template id in load order.
func (b *Bestiary) IDs() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Spawn creates a live monster from the template with id.
func (b *Bestiary) Spawn(id string) (*entity.Monster, error) {
	t, err := b.Template(id)
	if err != nil {
		return nil, err
	}
	return t.Spawn(), nil
}

// CheckReferences verifies every loot item and on-hit effect resolves.
//
// Postcondition: a dangling reference is a configuration error.
func (b *Bestiary) CheckReferences(items *item.Registry, effects *effect.Registry) error {
	for _, id := range b.order {
		t := b.templates[id]
		if t.Loot != nil {
			if err := t.Loot.CheckItems(items); err != nil {
				return fmt.Errorf("monster template %q: %w", id, err)
			}
		}
		if t.OnHit != nil {
			if _, ok := effects.Get(t.OnHit.Effect); !ok {
				return fmt.Errorf("monster template %q: %w: %q", id, effect.ErrUnknownEffect, t.OnHit.Effect)
			}
		}
	}
	return nil
}
