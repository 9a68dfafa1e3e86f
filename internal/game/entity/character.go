package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/item"
	"github.com/cory-johannsen/skirmish/internal/game/quest"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

// DefaultInventorySlots is the inventory size of a new character.
const DefaultInventorySlots = 16

var (
	// ErrNotWearable is returned when equipping an item that is neither weapon nor equipment.
	ErrNotWearable = errors.New("item cannot be equipped")
	// ErrSlotEmpty is returned when unequipping an empty slot.
	ErrSlotEmpty = errors.New("slot is empty")
)

// Growth is the stat increase granted on reaching a level.
type Growth struct {
	Health   float64 `yaml:"health"`
	Mana     float64 `yaml:"mana"`
	Strength float64 `yaml:"strength"`
	Agility  float64 `yaml:"agility"`
	Armor    float64 `yaml:"armor"`
}

// CharacterConfig describes a freshly created character.
type CharacterConfig struct {
	Name           string
	Level          int
	Health         float64
	Mana           float64
	Attributes     map[stat.Key]float64
	XPThreshold    int
	InventorySlots int
}

// Character is a player-controlled LivingThing.
type Character struct {
	*LivingThing
	experience      int
	xpThreshold     int
	weapon          *item.Def
	equipment       map[item.Slot]*item.Def
	inventory       *item.Inventory
	gold            int
	quests          *quest.Log
	spells          map[string]bool
	scriptsSeen     map[string]bool
	monstersKilled  map[string]bool
	questsCompleted map[string]bool
}

// NewCharacter creates a character wielding bare fists at full health.
//
// Precondition: cfg.Name is non-empty; cfg.Health > 0.
func NewCharacter(cfg CharacterConfig) *Character {
	if cfg.Level < 1 {
		cfg.Level = 1
	}
	if cfg.InventorySlots <= 0 {
		cfg.InventorySlots = DefaultInventorySlots
	}
	fists := item.Fists()
	base := Base{
		Health:         cfg.Health,
		Mana:           cfg.Mana,
		MinDamage:      fists.MinDamage,
		MaxDamage:      fists.MaxDamage,
		StrengthDamage: StrengthDamageRate,
	}
	return &Character{
		LivingThing:     newLivingThing(cfg.Name, cfg.Level, base, cfg.Attributes),
		xpThreshold:     cfg.XPThreshold,
		weapon:          fists,
		equipment:       make(map[item.Slot]*item.Def),
		inventory:       item.NewInventory(cfg.InventorySlots),
		quests:          quest.NewLog(),
		spells:          make(map[string]bool),
		scriptsSeen:     make(map[string]bool),
		monstersKilled:  make(map[string]bool),
		questsCompleted: make(map[string]bool),
	}
}

// TakeAttack commits an incoming hit. A killing blow leaves the character
// dead and revivable.
func (c *Character) TakeAttack(d damage.Damage, attackerLevel int) (rules.Hit, error) {
	hit, killed, err := c.takeHit(d, attackerLevel)
	if err != nil {
		return hit, err
	}
	if killed {
		c.LeaveCombat()
	}
	return hit, nil
}

// Revive brings a dead character back at full health and mana with no
// effects or shield. It does nothing to a living character.
func (c *Character) Revive() {
	if c.Alive() {
		return
	}
	c.ClearEffects()
	c.shield = 0
	c.restore()
}

func (c *Character) Experience() int  { return c.experience }
func (c *Character) XPThreshold() int { return c.xpThreshold }
func (c *Character) Gold() int        { return c.gold }

// AddExperience adds n to the experience counter.
func (c *Character) AddExperience(n int) { c.experience += n }

// ApplyLevelUp raises the level by one and applies g in a single step: caps
// and attributes grow, derived stats are recomputed, health and mana are
// fully restored, experience resets and nextThreshold becomes the new target.
func (c *Character) ApplyLevelUp(g Growth, nextThreshold int) {
	c.level++
	c.base.Health += g.Health
	c.base.Mana += g.Mana
	c.attrs.Add(stat.Strength, g.Strength)
	c.attrs.Add(stat.Agility, g.Agility)
	c.attrs.Add(stat.Armor, g.Armor)
	c.Recompute()
	c.restore()
	c.experience = 0
	c.xpThreshold = nextThreshold
}

// AddGold adds n gold. Negative n spends gold, never below zero.
func (c *Character) AddGold(n int) {
	c.gold = max(0, c.gold+n)
}

// Weapon returns the wielded weapon; never nil.
func (c *Character) Weapon() *item.Def { return c.weapon }

// Equipped returns the item in slot, or nil.
func (c *Character) Equipped(slot item.Slot) *item.Def { return c.equipment[slot] }

// Equip wields a weapon or wears equipment, returning what it replaced. The
// replaced item's attribute changes are reversed before the new ones apply.
//
// Postcondition: derived stats reflect exactly the currently equipped items.
func (c *Character) Equip(def *item.Def) (*item.Def, error) {
	if def == nil || !def.Wearable() {
		return nil, fmt.Errorf("equipping: %w", ErrNotWearable)
	}
	if def.Kind == item.KindWeapon {
		prev := c.weapon
		prev.Deltas().ReverseFrom(c.attrs)
		def.Deltas().ApplyTo(c.attrs)
		c.weapon = def
		c.base.MinDamage = def.MinDamage
		c.base.MaxDamage = def.MaxDamage
		c.Recompute()
		return prev, nil
	}
	prev := c.equipment[def.Slot]
	if prev != nil {
		prev.Deltas().ReverseFrom(c.attrs)
	}
	def.Deltas().ApplyTo(c.attrs)
	c.equipment[def.Slot] = def
	c.Recompute()
	return prev, nil
}

// Unequip removes the item worn in slot.
func (c *Character) Unequip(slot item.Slot) (*item.Def, error) {
	prev, ok := c.equipment[slot]
	if !ok {
		return nil, fmt.Errorf("unequipping %s: %w", slot, ErrSlotEmpty)
	}
	delete(c.equipment, slot)
	c.reverseDeltas(prev.Deltas())
	return prev, nil
}

// UnequipWeapon returns to bare fists and returns the previous weapon.
func (c *Character) UnequipWeapon() *item.Def {
	prev, _ := c.Equip(item.Fists())
	return prev
}

// Inventory returns the character's inventory.
func (c *Character) Inventory() *item.Inventory { return c.inventory }

// QuestLog returns the character's accepted quests.
func (c *Character) QuestLog() *quest.Log { return c.quests }

// RecordMonsterKill adds guid to the killed-monsters set.
func (c *Character) RecordMonsterKill(guid string) { c.monstersKilled[guid] = true }

// HasKilled reports whether the monster with guid was killed by this character.
func (c *Character) HasKilled(guid string) bool { return c.monstersKilled[guid] }

// CompleteQuest adds id to the completed-quests set.
func (c *Character) CompleteQuest(id string) { c.questsCompleted[id] = true }

// HasCompleted reports whether quest id has been completed.
func (c *Character) HasCompleted(id string) bool { return c.questsCompleted[id] }

// MarkScriptSeen records name as seen and reports whether it was new.
func (c *Character) MarkScriptSeen(name string) bool {
	if c.scriptsSeen[name] {
		return false
	}
	c.scriptsSeen[name] = true
	return true
}

// HasSeenScript reports whether the one-time script name has already run.
func (c *Character) HasSeenScript(name string) bool { return c.scriptsSeen[name] }

// LearnSpell adds name to the spell book.
func (c *Character) LearnSpell(name string) { c.spells[name] = true }

// KnowsSpell reports whether name is in the spell book.
func (c *Character) KnowsSpell(name string) bool { return c.spells[name] }

// KnownSpells returns the spell book ordered by name.
func (c *Character) KnownSpells() []string { return sortedKeys(c.spells) }

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *Character) String() string {
	return fmt.Sprintf("Character %s - Level %d | %.2f/%.2f HP | %.2f/%.2f Mana | %d/%d XP",
		c.name, c.level, c.health, c.derived.MaxHealth, c.mana, c.derived.MaxMana, c.experience, c.xpThreshold)
}
