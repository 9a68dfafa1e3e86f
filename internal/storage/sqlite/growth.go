// Package sqlite stores the level growth table in an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/progression"
)

const schema = `
CREATE TABLE IF NOT EXISTS level_xp_requirement (
	level       INTEGER PRIMARY KEY CHECK (level >= 1),
	xp_required INTEGER NOT NULL CHECK (xp_required >= 1)
);
CREATE TABLE IF NOT EXISTS levelup_stats (
	level    INTEGER PRIMARY KEY CHECK (level >= 1),
	health   REAL NOT NULL DEFAULT 0,
	mana     REAL NOT NULL DEFAULT 0,
	strength REAL NOT NULL DEFAULT 0,
	agility  REAL NOT NULL DEFAULT 0,
	armor    REAL NOT NULL DEFAULT 0
);
`

// GrowthStore is a progression.GrowthTable read from SQLite.
type GrowthStore struct {
	sqlDB *sql.DB
}

// Open opens (creating if needed) the growth database at path.
//
// Precondition: path must be non-empty.
// Postcondition: both tables exist on success.
func Open(path string) (*GrowthStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create growth schema: %w", err)
	}
	return &GrowthStore{sqlDB: sqlDB}, nil
}

// Close closes the underlying database.
func (s *GrowthStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Seed replaces the stored table with rows in one transaction.
//
// Postcondition: on error nothing is changed.
func (s *GrowthStore) Seed(ctx context.Context, rows []progression.Level) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM level_xp_requirement`, `DELETE FROM levelup_stats`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear growth table: %w", err)
		}
	}
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO level_xp_requirement (level, xp_required) VALUES (?, ?)`,
			r.Level, r.XPRequired,
		); err != nil {
			return fmt.Errorf("insert xp requirement for level %d: %w", r.Level, err)
		}
		g := r.Growth
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO levelup_stats (level, health, mana, strength, agility, armor) VALUES (?, ?, ?, ?, ?, ?)`,
			r.Level, g.Health, g.Mana, g.Strength, g.Agility, g.Armor,
		); err != nil {
			return fmt.Errorf("insert growth for level %d: %w", r.Level, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// Growth implements progression.GrowthTable.
func (s *GrowthStore) Growth(level int) (entity.Growth, error) {
	var g entity.Growth
	err := s.sqlDB.QueryRow(
		`SELECT health, mana, strength, agility, armor FROM levelup_stats WHERE level = ?`, level,
	).Scan(&g.Health, &g.Mana, &g.Strength, &g.Agility, &g.Armor)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Growth{}, fmt.Errorf("growth for level %d: %w", level, progression.ErrMissingLevel)
	}
	if err != nil {
		return entity.Growth{}, fmt.Errorf("query growth for level %d: %w", level, err)
	}
	return g, nil
}

// XPRequired implements progression.GrowthTable.
func (s *GrowthStore) XPRequired(level int) (int, error) {
	var xp int
	err := s.sqlDB.QueryRow(
		`SELECT xp_required FROM level_xp_requirement WHERE level = ?`, level,
	).Scan(&xp)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("xp requirement for level %d: %w", level, progression.ErrMissingLevel)
	}
	if err != nil {
		return 0, fmt.Errorf("query xp requirement for level %d: %w", level, err)
	}
	return xp, nil
}
