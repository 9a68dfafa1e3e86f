package entity

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// Swing is one outgoing attack: the raw roll and the level-scaled damage it became.
type Swing struct {
	Raw    int
	Damage damage.Damage
}

// Combatant is anything that can trade blows in an encounter.
type Combatant interface {
	Living() *LivingThing
	// RollDamage rolls the attacker's damage range and scales it against targetLevel.
	RollDamage(targetLevel int, src dice.Source) Swing
	// TakeAttack commits an incoming hit and fires the death hook if it kills.
	TakeAttack(d damage.Damage, attackerLevel int) (rules.Hit, error)
	// PreviewAttack reports what TakeAttack would do without changing state.
	PreviewAttack(d damage.Damage, attackerLevel int) rules.Hit
}

// RollDamage rolls uniformly between the floors of the current min and max
// damage and applies level scaling against targetLevel.
//
// Postcondition: Swing.Damage is purely physical and non-negative; a zero roll is valid.
func (lt *LivingThing) RollDamage(targetLevel int, src dice.Source) Swing {
	lo := int(math.Floor(math.Max(0, lt.derived.MinDamage)))
	hi := int(math.Floor(math.Max(0, lt.derived.MaxDamage)))
	raw := dice.Range(src, lo, hi)
	return Swing{
		Raw:    raw,
		Damage: damage.Physical(rules.ScaleByLevel(float64(raw), lt.level, targetLevel)),
	}
}
