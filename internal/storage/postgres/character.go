package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// StoredCharacter is a character snapshot with its row metadata.
type StoredCharacter struct {
	ID        int64
	Snapshot  entity.CharacterSnapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CharacterRepository persists character snapshots as JSONB, keyed by name.
type CharacterRepository struct {
	db DBTX
}

// NewCharacterRepository creates a CharacterRepository backed by db.
//
// Precondition: db must be a valid, open pool or transaction.
func NewCharacterRepository(db DBTX) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Save inserts s, or replaces the stored snapshot of the character with the
// same name, and returns the row id.
//
// Precondition: s.Name must be non-empty; s.Level >= 1.
// Postcondition: a subsequent Load(s.Name) returns s.
func (r *CharacterRepository) Save(ctx context.Context, s entity.CharacterSnapshot) (int64, error) {
	if s.Name == "" {
		return 0, errors.New("saving character: name must not be empty")
	}
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO characters (name, level, snapshot)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
			SET level = EXCLUDED.level, snapshot = EXCLUDED.snapshot, updated_at = NOW()
		RETURNING id`,
		s.Name, s.Level, s,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("saving character %q: %w", s.Name, err)
	}
	return id, nil
}

// Load retrieves the character called name.
//
// Postcondition: Returns the StoredCharacter or ErrCharacterNotFound.
func (r *CharacterRepository) Load(ctx context.Context, name string) (StoredCharacter, error) {
	var sc StoredCharacter
	err := r.db.QueryRow(ctx, `
		SELECT id, snapshot, created_at, updated_at
		FROM characters WHERE name = $1`,
		name,
	).Scan(&sc.ID, &sc.Snapshot, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredCharacter{}, ErrCharacterNotFound
		}
		return StoredCharacter{}, fmt.Errorf("querying character %q: %w", name, err)
	}
	return sc, nil
}

// List returns every stored character ordered by name.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) List(ctx context.Context) ([]StoredCharacter, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, snapshot, created_at, updated_at
		FROM characters ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	out := make([]StoredCharacter, 0)
	for rows.Next() {
		var sc StoredCharacter
		if err := rows.Scan(&sc.ID, &sc.Snapshot, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Delete removes the character called name along with its encounter history.
//
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row was deleted.
func (r *CharacterRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM characters WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting character %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}
