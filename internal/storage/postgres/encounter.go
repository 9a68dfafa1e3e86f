package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
)

// EncounterRecord is one finished fight in a character's history.
type EncounterRecord struct {
	ID              int64
	CharacterID     int64
	MonsterTemplate string
	MonsterLevel    int
	Outcome         string
	Rounds          int
	Experience      int
	Gold            int
	CreatedAt       time.Time
}

// EncounterRepository appends to and reads the encounter history.
type EncounterRepository struct {
	db DBTX
}

// NewEncounterRepository creates an EncounterRepository backed by db.
func NewEncounterRepository(db DBTX) *EncounterRepository {
	return &EncounterRepository{db: db}
}

// Record inserts rec and returns its id.
//
// Precondition: rec.CharacterID must reference an existing character.
func (r *EncounterRepository) Record(ctx context.Context, rec EncounterRecord) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO encounters
			(character_id, monster_template, monster_level, outcome, rounds, experience, gold)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		rec.CharacterID, rec.MonsterTemplate, rec.MonsterLevel, rec.Outcome,
		rec.Rounds, rec.Experience, rec.Gold,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("recording encounter: %w", err)
	}
	return id, nil
}

// Recent returns up to limit encounters for characterID, newest first.
//
// Precondition: limit > 0.
func (r *EncounterRepository) Recent(ctx context.Context, characterID int64, limit int) ([]EncounterRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, character_id, monster_template, monster_level, outcome, rounds,
		       experience, gold, created_at
		FROM encounters WHERE character_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		characterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing encounters: %w", err)
	}
	defer rows.Close()

	out := make([]EncounterRecord, 0)
	for rows.Next() {
		var rec EncounterRecord
		if err := rows.Scan(
			&rec.ID, &rec.CharacterID, &rec.MonsterTemplate, &rec.MonsterLevel, &rec.Outcome,
			&rec.Rounds, &rec.Experience, &rec.Gold, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning encounter row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Store combines the repositories behind the character persistence
// collaborator used by the game loop.
type Store struct {
	pool *Pool
}

// NewStore creates a Store on pool.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// LoadCharacter returns the stored snapshot for name.
//
// Postcondition: returns ErrCharacterNotFound for a new name.
func (s *Store) LoadCharacter(ctx context.Context, name string) (entity.CharacterSnapshot, error) {
	sc, err := NewCharacterRepository(s.pool.DB()).Load(ctx, name)
	if err != nil {
		return entity.CharacterSnapshot{}, err
	}
	return sc.Snapshot, nil
}

// SaveCharacter stores snap without an encounter record.
func (s *Store) SaveCharacter(ctx context.Context, snap entity.CharacterSnapshot) error {
	_, err := NewCharacterRepository(s.pool.DB()).Save(ctx, snap)
	return err
}

// SaveEncounter stores snap and appends rec to its history atomically.
// rec.CharacterID is filled in from the saved character.
//
// Postcondition: either both writes are committed or neither is.
func (s *Store) SaveEncounter(ctx context.Context, snap entity.CharacterSnapshot, rec EncounterRecord) error {
	return s.pool.WithTx(ctx, func(tx pgx.Tx) error {
		id, err := NewCharacterRepository(tx).Save(ctx, snap)
		if err != nil {
			return err
		}
		rec.CharacterID = id
		_, err = NewEncounterRepository(tx).Record(ctx, rec)
		return err
	})
}
