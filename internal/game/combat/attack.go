package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// Blow is one resolved melee attack.
type Blow struct {
	Attacker string
	Victim   string
	Swing    entity.Swing
	Hit      rules.Hit
	Killed   bool
}

// Attack has attacker swing at victim: the damage roll is scaled by the level
// gap and the victim commits it through mitigation, absorption and rounding.
//
// Precondition: attacker, victim and src must be non-nil.
// Postcondition: returns an error wrapping entity.ErrAlreadyDead if victim
// was dead before the swing. A zero roll is a normal result.
func Attack(attacker, victim entity.Combatant, src dice.Source) (Blow, error) {
	a, v := attacker.Living(), victim.Living()
	if !v.Alive() {
		return Blow{}, fmt.Errorf("%s attacks %s: %w", a.Name(), v.Name(), entity.ErrAlreadyDead)
	}
	swing := attacker.RollDamage(v.Level(), src)
	hit, err := victim.TakeAttack(swing.Damage, a.Level())
	if err != nil {
		return Blow{}, fmt.Errorf("%s attacks %s: %w", a.Name(), v.Name(), err)
	}
	return Blow{
		Attacker: a.Name(),
		Victim:   v.Name(),
		Swing:    swing,
		Hit:      hit,
		Killed:   !v.Alive(),
	}, nil
}
