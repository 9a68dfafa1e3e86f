// Package entity models the living participants of combat: the shared
// LivingThing state and its Character and Monster variants.
package entity

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

// Conversion rates from raw attributes to derived stats.
const (
	AgilityArmorRate    = 2.0
	AgilityStrengthRate = 0.5
	// StrengthDamageRate is the weapon damage added per point of strength.
	StrengthDamageRate = 0.1
)

var (
	// ErrAlreadyDead is returned when a dead entity is asked to take a hit.
	ErrAlreadyDead = errors.New("target already dead")
	// ErrNotEnoughMana is returned when a mana cost cannot be paid.
	ErrNotEnoughMana = errors.New("not enough mana")
)

// Base holds the values derived stats are computed from that do not live in
// the attribute bag.
type Base struct {
	Health    float64
	Mana      float64
	MinDamage float64
	MaxDamage float64
	// StrengthDamage is the damage added per point of effective strength.
	StrengthDamage float64
}

// Derived is the full set of stats computed from Base and the attribute bag.
// It is replaced wholesale on every recomputation.
type Derived struct {
	MaxHealth float64
	MaxMana   float64
	Armor     float64
	Strength  float64
	MinDamage float64
	MaxDamage float64
}

// Derive computes the derived stats for base and attrs.
//
// Postcondition: a pure function of its inputs.
func Derive(base Base, attrs *stat.Bag) Derived {
	agility := attrs.Get(stat.Agility)
	strength := attrs.Get(stat.Strength) + AgilityStrengthRate*agility
	return Derived{
		MaxHealth: base.Health + attrs.Get(stat.BonusHealth),
		MaxMana:   base.Mana + attrs.Get(stat.BonusMana),
		Armor:     attrs.Get(stat.Armor) + AgilityArmorRate*agility,
		Strength:  strength,
		MinDamage: base.MinDamage + base.StrengthDamage*strength,
		MaxDamage: base.MaxDamage + base.StrengthDamage*strength,
	}
}

// LivingThing is the state shared by every combatant.
type LivingThing struct {
	name     string
	level    int
	base     Base
	health   float64
	mana     float64
	attrs    *stat.Bag
	effects  *effect.Set
	derived  Derived
	shield   float64
	inCombat bool
	alive    bool
}

// newLivingThing builds a LivingThing at full health and mana. Every mutable
// container is created here for this instance alone.
//
// Precondition: level >= 1; base.Health > 0.
func newLivingThing(name string, level int, base Base, attrs map[stat.Key]float64) *LivingThing {
	lt := &LivingThing{
		name:    name,
		level:   level,
		base:    base,
		attrs:   stat.NewBag(attrs),
		effects: effect.NewSet(),
		alive:   true,
	}
	lt.derived = Derive(lt.base, lt.attrs)
	lt.health = lt.derived.MaxHealth
	lt.mana = lt.derived.MaxMana
	return lt
}

// Living returns lt itself so variants satisfy Combatant through embedding.
func (lt *LivingThing) Living() *LivingThing { return lt }

func (lt *LivingThing) Name() string         { return lt.name }
func (lt *LivingThing) Level() int           { return lt.level }
func (lt *LivingThing) Health() float64      { return lt.health }
func (lt *LivingThing) Mana() float64        { return lt.mana }
func (lt *LivingThing) MaxHealth() float64   { return lt.derived.MaxHealth }
func (lt *LivingThing) MaxMana() float64     { return lt.derived.MaxMana }
func (lt *LivingThing) Armor() float64       { return lt.derived.Armor }
func (lt *LivingThing) Strength() float64    { return lt.derived.Strength }
func (lt *LivingThing) MinDamage() float64   { return lt.derived.MinDamage }
func (lt *LivingThing) MaxDamage() float64   { return lt.derived.MaxDamage }
func (lt *LivingThing) Shield() float64      { return lt.shield }
func (lt *LivingThing) Alive() bool          { return lt.alive }
func (lt *LivingThing) InCombat() bool       { return lt.inCombat }
func (lt *LivingThing) Derived() Derived     { return lt.derived }
func (lt *LivingThing) Base() Base           { return lt.base }
func (lt *LivingThing) Effects() *effect.Set { return lt.effects }

// Attribute returns the raw bag value for k.
func (lt *LivingThing) Attribute(k stat.Key) float64 { return lt.attrs.Get(k) }

// Attributes returns a copy of the raw attribute bag.
func (lt *LivingThing) Attributes() map[stat.Key]float64 { return lt.attrs.Snapshot() }

// EnterCombat flags lt as engaged.
func (lt *LivingThing) EnterCombat() { lt.inCombat = true }

// LeaveCombat clears the combat flag.
func (lt *LivingThing) LeaveCombat() { lt.inCombat = false }

// Recompute rebuilds the derived stats from the base values and attribute bag.
// A rise in max health or mana raises the current value by the same amount; a
// fall clamps the current value to the new maximum.
//
// Postcondition: calling Recompute again with no intervening change leaves
// every value unchanged.
func (lt *LivingThing) Recompute() {
	next := Derive(lt.base, lt.attrs)
	lt.health = adjustCurrent(lt.health, lt.derived.MaxHealth, next.MaxHealth, lt.alive)
	lt.mana = adjustCurrent(lt.mana, lt.derived.MaxMana, next.MaxMana, true)
	lt.derived = next
}

func adjustCurrent(current, oldMax, newMax float64, grow bool) float64 {
	if grow && newMax > oldMax {
		current += newMax - oldMax
	}
	return math.Max(0, math.Min(current, newMax))
}

// applyDeltas applies d to the bag and recomputes.
func (lt *LivingThing) applyDeltas(d stat.Deltas) {
	d.ApplyTo(lt.attrs)
	lt.Recompute()
}

// reverseDeltas removes d from the bag and recomputes.
func (lt *LivingThing) reverseDeltas(d stat.Deltas) {
	d.ReverseFrom(lt.attrs)
	lt.Recompute()
}

// AddEffect attaches e. A newly attached effect is applied once; re-adding an
// attached effect only refreshes its duration.
//
// Postcondition: Effects().Has(e.Name()) is true on success.
func (lt *LivingThing) AddEffect(e effect.Effect) (refreshed bool, err error) {
	refreshed, err = lt.effects.Add(e)
	if err != nil {
		return false, fmt.Errorf("%s: %w", lt.name, err)
	}
	if !refreshed {
		e.Apply(lt.attrs)
		lt.Recompute()
	}
	return refreshed, nil
}

// RemoveEffect detaches and reverses the named effect.
//
// Postcondition: returns an error wrapping effect.ErrNotActive if it was not attached.
func (lt *LivingThing) RemoveEffect(name string) error {
	e, err := lt.effects.Remove(name)
	if err != nil {
		return fmt.Errorf("%s: %w", lt.name, err)
	}
	e.Reverse(lt.attrs)
	lt.Recompute()
	return nil
}

// ExpireEffects advances every effect counting down in phase p once and
// reverses those that reach zero.
//
// Postcondition: each returned effect has been reversed and detached exactly once.
func (lt *LivingThing) ExpireEffects(p effect.Phase) []effect.Effect {
	expired := lt.effects.Advance(p)
	for _, e := range expired {
		e.Reverse(lt.attrs)
	}
	if len(expired) > 0 {
		lt.Recompute()
	}
	return expired
}

// ClearEffects reverses and detaches every attached effect.
func (lt *LivingThing) ClearEffects() {
	for _, a := range lt.effects.All() {
		if e, err := lt.effects.Remove(a.Effect.Name()); err == nil {
			e.Reverse(lt.attrs)
		}
	}
	lt.Recompute()
}

// AddShield raises the absorption shield by amount. Non-positive amounts are ignored.
func (lt *LivingThing) AddShield(amount float64) {
	if amount > 0 {
		lt.shield += amount
	}
}

// PreviewAttack computes the hit d would deal without changing any state.
//
// Postcondition: Shield() and Health() are unchanged.
func (lt *LivingThing) PreviewAttack(d damage.Damage, attackerLevel int) rules.Hit {
	return rules.ResolveHit(d, lt.derived.Armor, attackerLevel, lt.shield)
}

// takeHit commits a hit: mitigation, absorption, subtraction and the
// alive-to-dead transition. killed reports that this hit caused death.
func (lt *LivingThing) takeHit(d damage.Damage, attackerLevel int) (hit rules.Hit, killed bool, err error) {
	if !lt.alive {
		return rules.Hit{}, false, fmt.Errorf("%s: %w", lt.name, ErrAlreadyDead)
	}
	hit = rules.ResolveHit(d, lt.derived.Armor, attackerLevel, lt.shield)
	lt.shield = hit.ShieldLeft
	lt.health = math.Max(0, damage.RoundHit(lt.health-hit.Dealt))
	if lt.health <= 0 {
		lt.alive = false
		killed = true
	}
	return hit, killed, nil
}

// Heal restores up to amount health and returns the amount restored.
//
// Postcondition: Health() <= MaxHealth(); dead entities are not healed.
func (lt *LivingThing) Heal(amount float64) float64 {
	if !lt.alive || amount <= 0 {
		return 0
	}
	before := lt.health
	lt.health = math.Min(lt.derived.MaxHealth, damage.RoundHit(lt.health+amount))
	return lt.health - before
}

// SpendMana pays cost from the mana pool.
//
// Postcondition: on error mana is unchanged.
func (lt *LivingThing) SpendMana(cost float64) error {
	if cost > lt.mana {
		return fmt.Errorf("%s needs %.0f mana, has %.0f: %w", lt.name, cost, lt.mana, ErrNotEnoughMana)
	}
	lt.mana -= cost
	return nil
}

// restore brings health and mana to their maximums and marks lt alive.
func (lt *LivingThing) restore() {
	lt.health = lt.derived.MaxHealth
	lt.mana = lt.derived.MaxMana
	lt.alive = true
}

func (lt *LivingThing) String() string {
	return fmt.Sprintf("Level %d %s - %.2f/%.2f HP | %.2f/%.2f Mana",
		lt.level, lt.name, lt.health, lt.derived.MaxHealth, lt.mana, lt.derived.MaxMana)
}
