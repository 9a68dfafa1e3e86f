package entity

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/loot"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

// MonsterConfig describes a monster at spawn time. OnHitEffect names an effect
// attached to the victim of a landed blow with OnHitChance percent probability.
type MonsterConfig struct {
	GUID            string
	TemplateID      string
	Name            string
	Level           int
	Health          float64
	Mana            float64
	Attributes      map[stat.Key]float64
	MinDamage       float64
	MaxDamage       float64
	XPReward        int
	Loot            *loot.Table
	QuestRelationID string
	Respawnable     bool
	DeathScript     string
	OnHitEffect     string
	OnHitChance     int
}

// Monster is a world-spawned LivingThing.
type Monster struct {
	*LivingThing
	guid            string
	templateID      string
	xpReward        int
	loot            *loot.Table
	questRelationID string
	respawnable     bool
	interactable    bool
	deathScript     string
	onHitEffect     string
	onHitChance     int
}

// NewMonster creates a live, interactable monster at full health.
//
// Precondition: cfg.Level >= 1; cfg.Health > 0; cfg.MinDamage <= cfg.MaxDamage.
func NewMonster(cfg MonsterConfig) *Monster {
	base := Base{Health: cfg.Health, Mana: cfg.Mana, MinDamage: cfg.MinDamage, MaxDamage: cfg.MaxDamage}
	return &Monster{
		LivingThing:     newLivingThing(cfg.Name, cfg.Level, base, cfg.Attributes),
		guid:            cfg.GUID,
		templateID:      cfg.TemplateID,
		xpReward:        cfg.XPReward,
		loot:            cfg.Loot,
		questRelationID: cfg.QuestRelationID,
		respawnable:     cfg.Respawnable,
		interactable:    true,
		deathScript:     cfg.DeathScript,
		onHitEffect:     cfg.OnHitEffect,
		onHitChance:     cfg.OnHitChance,
	}
}

func (m *Monster) GUID() string            { return m.guid }
func (m *Monster) TemplateID() string      { return m.templateID }
func (m *Monster) XPReward() int           { return m.xpReward }
func (m *Monster) Loot() *loot.Table       { return m.loot }
func (m *Monster) QuestRelationID() string { return m.questRelationID }
func (m *Monster) Respawnable() bool       { return m.respawnable }
func (m *Monster) Interactable() bool      { return m.interactable }
func (m *Monster) DeathScript() string     { return m.deathScript }

// OnHit returns the effect id attached on a landed blow and its percent chance.
func (m *Monster) OnHit() (effectID string, chance int) { return m.onHitEffect, m.onHitChance }

// TakeAttack commits an incoming hit. A killing blow ends combat for the
// monster and, unless it respawns, leaves it non-interactable.
func (m *Monster) TakeAttack(d damage.Damage, attackerLevel int) (rules.Hit, error) {
	hit, killed, err := m.takeHit(d, attackerLevel)
	if err != nil {
		return hit, err
	}
	if killed {
		m.LivingThing.LeaveCombat()
		m.interactable = m.respawnable
	}
	return hit, nil
}

// LeaveCombat clears the combat flag and, if the monster survived, resets it
// to full health.
func (m *Monster) LeaveCombat() {
	m.LivingThing.LeaveCombat()
	if m.Alive() {
		m.health = m.derived.MaxHealth
	}
}

// Respawn brings a dead respawnable monster back at full strength.
//
// Postcondition: returns false and changes nothing for a living or
// non-respawnable monster.
func (m *Monster) Respawn() bool {
	if m.Alive() || !m.respawnable {
		return false
	}
	m.ClearEffects()
	m.shield = 0
	m.restore()
	m.interactable = true
	return true
}

func (m *Monster) String() string {
	return fmt.Sprintf("Creature Level %d %s - %.2f/%.2f HP | %.2f/%.2f Mana",
		m.level, m.name, m.health, m.derived.MaxHealth, m.mana, m.derived.MaxMana)
}
