package progression

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// LevelUp describes one completed level-up.
type LevelUp struct {
	Level         int
	Growth        entity.Growth
	NextThreshold int
}

// Award is the outcome of an experience award. LevelUp is nil when the
// threshold was not reached.
type Award struct {
	Experience int
	LevelUp    *LevelUp
}

// Engine applies experience and level-ups to characters.
type Engine struct {
	table  GrowthTable
	logger *zap.Logger
}

// NewEngine creates an Engine backed by table.
//
// Precondition: table and logger must be non-nil.
func NewEngine(table GrowthTable, logger *zap.Logger) *Engine {
	return &Engine{table: table, logger: logger}
}

// InitialThreshold returns the experience a level-1 character needs.
func (e *Engine) InitialThreshold(level int) (int, error) {
	return e.table.XPRequired(level)
}

// AwardKill awards the experience for killing a monster of monsterLevel worth
// baseXP, adjusted for the level gap.
//
// Postcondition: a zero award is a normal result, not an error.
func (e *Engine) AwardKill(c *entity.Character, monsterLevel, baseXP int) (Award, error) {
	xp := rules.ExperienceReward(c.Level(), monsterLevel, baseXP)
	return e.AwardExperience(c, xp)
}

// AwardExperience adds xp to c and levels up once if the threshold is met.
//
// Postcondition: on error the experience has been added but no level-up
// change has been applied.
func (e *Engine) AwardExperience(c *entity.Character, xp int) (Award, error) {
	award := Award{Experience: xp}
	c.AddExperience(xp)
	e.logger.Debug("experience awarded",
		zap.String("character", c.Name()),
		zap.Int("xp", xp),
		zap.Int("total", c.Experience()),
		zap.Int("threshold", c.XPThreshold()),
	)
	if c.XPThreshold() <= 0 || c.Experience() < c.XPThreshold() {
		return award, nil
	}
	lu, err := e.LevelUp(c)
	if err != nil {
		return award, err
	}
	award.LevelUp = &lu
	return award, nil
}

// LevelUp advances c by one level. Every table lookup happens before any
// change, so a missing entry leaves c untouched.
//
// Postcondition: on success level is +1, growth applied, health and mana are
// full, experience is 0 and the threshold is the new level's requirement.
func (e *Engine) LevelUp(c *entity.Character) (LevelUp, error) {
	next := c.Level() + 1
	growth, err := e.table.Growth(next)
	if err != nil {
		return LevelUp{}, fmt.Errorf("leveling %s: %w", c.Name(), err)
	}
	threshold, err := e.table.XPRequired(next)
	if err != nil {
		return LevelUp{}, fmt.Errorf("leveling %s: %w", c.Name(), err)
	}
	c.ApplyLevelUp(growth, threshold)
	e.logger.Info("level up",
		zap.String("character", c.Name()),
		zap.Int("level", c.Level()),
		zap.Float64("max_health", c.MaxHealth()),
		zap.Float64("max_mana", c.MaxMana()),
	)
	return LevelUp{Level: c.Level(), Growth: growth, NextThreshold: threshold}, nil
}
