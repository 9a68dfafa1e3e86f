// Package combat drives the turn lifecycle of a one-on-one fight: effect
// ticks and decay around each turn, the attack exchange, and the encounter
// loop that ends in a terminal Outcome.
package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

// Tick records one damage-over-time tick against its host. Scaled is the
// per-tick damage after level scaling by SourceLevel against the host, and
// Killed reports that this tick killed the host.
type Tick struct {
	Effect      string
	SourceLevel int
	Scaled      damage.Damage
	Hit         rules.Hit
	Killed      bool
}

// TurnStart is the outcome of StartOfTurn.
type TurnStart struct {
	Ticks   []Tick
	Expired []effect.Effect
}

// StartOfTurn ticks every damage-over-time effect on host, then counts those
// effects down once and detaches any that reach zero. Each tick is scaled by
// the effect's stored source level against the host's level and then goes
// through mitigation, absorption and rounding like any other hit.
//
// Precondition: host must be non-nil.
// Postcondition: once the host dies no further ticks are applied this turn.
// A dead host takes no ticks; its effects are still counted down.
func StartOfTurn(host entity.Combatant) (TurnStart, error) {
	lt := host.Living()
	var ts TurnStart
	for _, a := range lt.Effects().InPhase(effect.PhaseStartOfTurn) {
		if !lt.Alive() {
			break
		}
		d, srcLevel, ok := a.Effect.Tick()
		if !ok {
			continue
		}
		scaled := rules.ScaleDamage(d, srcLevel, lt.Level())
		hit, err := host.TakeAttack(scaled, srcLevel)
		if err != nil {
			return ts, fmt.Errorf("ticking %s on %s: %w", a.Effect.Name(), lt.Name(), err)
		}
		ts.Ticks = append(ts.Ticks, Tick{
			Effect:      a.Effect.Name(),
			SourceLevel: srcLevel,
			Scaled:      scaled,
			Hit:         hit,
			Killed:      !lt.Alive(),
		})
	}
	ts.Expired = lt.ExpireEffects(effect.PhaseStartOfTurn)
	return ts, nil
}

// EndOfTurn counts every buff on host down once. Buffs reaching zero are
// reversed and detached, and derived stats are recomputed.
//
// Postcondition: each returned effect was reversed exactly once.
func EndOfTurn(host entity.Combatant) []effect.Effect {
	return host.Living().ExpireEffects(effect.PhaseEndOfTurn)
}
