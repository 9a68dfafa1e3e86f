package entity

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/item"
	"github.com/cory-johannsen/skirmish/internal/game/quest"
	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

// CharacterSnapshot is the persisted shape of a Character. Attributes hold the
// raw values with equipment and active effects removed; both are reapplied on
// restore, so a save never bakes in a temporary bonus.
type CharacterSnapshot struct {
	Name            string               `json:"name"`
	Level           int                  `json:"level"`
	Experience      int                  `json:"experience"`
	XPThreshold     int                  `json:"xp_threshold"`
	BaseHealth      float64              `json:"base_health"`
	BaseMana        float64              `json:"base_mana"`
	Health          float64              `json:"health"`
	Mana            float64              `json:"mana"`
	Alive           bool                 `json:"alive"`
	Gold            int                  `json:"gold"`
	Attributes      map[stat.Key]float64 `json:"attributes"`
	WeaponID        string               `json:"weapon_id"`
	Equipment       map[item.Slot]string `json:"equipment"`
	InventorySlots  int                  `json:"inventory_slots"`
	Inventory       []item.Instance      `json:"inventory"`
	KnownSpells     []string             `json:"known_spells"`
	Quests          []quest.Progress     `json:"quests"`
	ScriptsSeen     []string             `json:"scripts_seen"`
	MonstersKilled  []string             `json:"monsters_killed"`
	QuestsCompleted []string             `json:"quests_completed"`
}

// Snapshot captures c for persistence. Active effects are not saved.
func (c *Character) Snapshot() CharacterSnapshot {
	raw := stat.NewBag(c.attrs.Snapshot())
	c.weapon.Deltas().ReverseFrom(raw)
	equipment := make(map[item.Slot]string, len(c.equipment))
	for slot, def := range c.equipment {
		def.Deltas().ReverseFrom(raw)
		equipment[slot] = def.ID
	}
	for _, a := range c.effects.All() {
		a.Effect.Reverse(raw)
	}
	return CharacterSnapshot{
		Name:            c.name,
		Level:           c.level,
		Experience:      c.experience,
		XPThreshold:     c.xpThreshold,
		BaseHealth:      c.base.Health,
		BaseMana:        c.base.Mana,
		Health:          c.health,
		Mana:            c.mana,
		Alive:           c.alive,
		Gold:            c.gold,
		Attributes:      raw.Snapshot(),
		WeaponID:        c.weapon.ID,
		Equipment:       equipment,
		InventorySlots:  c.inventory.MaxSlots,
		Inventory:       c.inventory.Items(),
		KnownSpells:     c.KnownSpells(),
		Quests:          c.quests.Progress(),
		ScriptsSeen:     sortedKeys(c.scriptsSeen),
		MonstersKilled:  sortedKeys(c.monstersKilled),
		QuestsCompleted: sortedKeys(c.questsCompleted),
	}
}

// RestoreCharacter rebuilds a Character from s, resolving item and quest ids
// against the given registries.
//
// Postcondition: returns an error if any referenced item or quest is unknown;
// current health and mana never exceed the restored maximums.
func RestoreCharacter(s CharacterSnapshot, items *item.Registry, quests *quest.Registry) (*Character, error) {
	c := NewCharacter(CharacterConfig{
		Name:           s.Name,
		Level:          s.Level,
		Health:         s.BaseHealth,
		Mana:           s.BaseMana,
		Attributes:     s.Attributes,
		XPThreshold:    s.XPThreshold,
		InventorySlots: s.InventorySlots,
	})
	c.experience = s.Experience
	c.gold = s.Gold

	if s.WeaponID != "" && s.WeaponID != item.Fists().ID {
		def, ok := items.Get(s.WeaponID)
		if !ok {
			return nil, fmt.Errorf("restoring %s: weapon %q: %w", s.Name, s.WeaponID, item.ErrUnknownItem)
		}
		if _, err := c.Equip(def); err != nil {
			return nil, fmt.Errorf("restoring %s: %w", s.Name, err)
		}
	}
	for slot, id := range s.Equipment {
		def, ok := items.Get(id)
		if !ok {
			return nil, fmt.Errorf("restoring %s: %s %q: %w", s.Name, slot, id, item.ErrUnknownItem)
		}
		if _, err := c.Equip(def); err != nil {
			return nil, fmt.Errorf("restoring %s: %w", s.Name, err)
		}
	}
	for _, inst := range s.Inventory {
		if err := c.inventory.Put(inst); err != nil {
			return nil, fmt.Errorf("restoring %s: %w", s.Name, err)
		}
	}
	log, err := quest.RestoreLog(s.Quests, quests)
	if err != nil {
		return nil, fmt.Errorf("restoring %s: %w", s.Name, err)
	}
	c.quests = log
	for _, name := range s.KnownSpells {
		c.spells[name] = true
	}
	for _, name := range s.ScriptsSeen {
		c.scriptsSeen[name] = true
	}
	for _, guid := range s.MonstersKilled {
		c.monstersKilled[guid] = true
	}
	for _, id := range s.QuestsCompleted {
		c.questsCompleted[id] = true
	}

	c.health = math.Max(0, math.Min(s.Health, c.derived.MaxHealth))
	c.mana = math.Max(0, math.Min(s.Mana, c.derived.MaxMana))
	c.alive = s.Alive && c.health > 0
	return c, nil
}
