package main

import (
	"context"
	"errors"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

// pgStore adapts postgres.Store to session.Store.
type pgStore struct {
	store *postgres.Store
}

func (p pgStore) LoadCharacter(ctx context.Context, name string) (entity.CharacterSnapshot, error) {
	snap, err := p.store.LoadCharacter(ctx, name)
	if errors.Is(err, postgres.ErrCharacterNotFound) {
		return entity.CharacterSnapshot{}, session.ErrCharacterNotFound
	}
	return snap, err
}

func (p pgStore) SaveCharacter(ctx context.Context, snap entity.CharacterSnapshot) error {
	return p.store.SaveCharacter(ctx, snap)
}

func (p pgStore) SaveEncounter(ctx context.Context, snap entity.CharacterSnapshot, sum session.Summary) error {
	return p.store.SaveEncounter(ctx, snap, postgres.EncounterRecord{
		MonsterTemplate: sum.MonsterTemplate,
		MonsterLevel:    sum.MonsterLevel,
		Outcome:         sum.Outcome,
		Rounds:          sum.Rounds,
		Experience:      sum.Experience,
		Gold:            sum.Gold,
	})
}
