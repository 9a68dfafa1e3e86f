package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/item"
	"github.com/cory-johannsen/skirmish/internal/game/quest"
	"github.com/cory-johannsen/skirmish/internal/game/spell"
)

// Catalog is the content a character's snapshot refers to.
type Catalog struct {
	Items  *item.Registry
	Quests *quest.Registry
	Spells *spell.Registry
}

// Thresholds supplies the experience needed to leave a level.
type Thresholds interface {
	InitialThreshold(level int) (int, error)
}

// Starting describes a freshly created character.
type Starting struct {
	Name      string
	Health    float64
	Mana      float64
	Spells    []string
	Quests    []string
	Equipment []string
}

// LoadOrCreate restores the character called st.Name from store, or creates
// and saves a new one from st when none exists.
//
// Precondition: every id in st resolves in cat.
// Postcondition: created reports whether a new character was made.
func LoadOrCreate(ctx context.Context, store Store, cat Catalog, th Thresholds, st Starting, logger *zap.Logger) (c *entity.Character, created bool, err error) {
	snap, err := store.LoadCharacter(ctx, st.Name)
	switch {
	case err == nil:
		c, err = entity.RestoreCharacter(snap, cat.Items, cat.Quests)
		if err != nil {
			return nil, false, err
		}
		logger.Info("character restored",
			zap.String("character", c.Name()),
			zap.Int("level", c.Level()),
			zap.Int("experience", c.Experience()),
		)
		return c, false, nil
	case !errors.Is(err, ErrCharacterNotFound):
		return nil, false, fmt.Errorf("loading %s: %w", st.Name, err)
	}

	c, err = NewCharacter(cat, th, st)
	if err != nil {
		return nil, false, err
	}
	if err := store.SaveCharacter(ctx, c.Snapshot()); err != nil {
		return nil, false, fmt.Errorf("saving new character %s: %w", st.Name, err)
	}
	logger.Info("character created", zap.String("character", c.Name()))
	return c, true, nil
}

// NewCharacter builds a level 1 character from st, equipping its starting
// gear, learning its spells and accepting its quests.
func NewCharacter(cat Catalog, th Thresholds, st Starting) (*entity.Character, error) {
	threshold, err := th.InitialThreshold(1)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", st.Name, err)
	}
	c := entity.NewCharacter(entity.CharacterConfig{
		Name:        st.Name,
		Level:       1,
		Health:      st.Health,
		Mana:        st.Mana,
		XPThreshold: threshold,
	})
	for _, id := range st.Equipment {
		def, ok := cat.Items.Get(id)
		if !ok {
			return nil, fmt.Errorf("creating %s: %q: %w", st.Name, id, item.ErrUnknownItem)
		}
		if _, err := c.Equip(def); err != nil {
			return nil, fmt.Errorf("creating %s: %w", st.Name, err)
		}
	}
	for _, id := range st.Spells {
		def, err := cat.Spells.Get(id)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", st.Name, err)
		}
		c.LearnSpell(def.ID)
	}
	for _, id := range st.Quests {
		q, err := cat.Quests.Get(id)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", st.Name, err)
		}
		if err := c.QuestLog().Accept(q, c.Level()); err != nil {
			return nil, fmt.Errorf("creating %s: %w", st.Name, err)
		}
	}
	return c, nil
}
