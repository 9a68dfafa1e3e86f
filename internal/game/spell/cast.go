package spell

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

var (
	// ErrNotEnoughMana is returned when the caster cannot pay the mana cost.
	ErrNotEnoughMana = entity.ErrNotEnoughMana
	// ErrLevelTooLow is returned when the caster is below the spell's level requirement.
	ErrLevelTooLow = errors.New("level too low for spell")
)

// Result describes a resolved cast.
type Result struct {
	Spell *Definition
	// Target is the name of the entity the spell landed on.
	Target string
	// Hit is set for damage spells.
	Hit *rules.Hit
	// Heal and Healed are set for heal spells.
	Heal   *Heal
	Healed float64
	// Effect is the attached effect for effect spells; Refreshed reports a
	// refresh of an already attached effect.
	Effect    effect.Effect
	Refreshed bool
}

// Caster resolves spell casts.
type Caster struct {
	spells  *Registry
	effects *effect.Registry
	src     dice.Source
	logger  *zap.Logger
}

// NewCaster creates a Caster.
//
// Precondition: all arguments must be non-nil.
func NewCaster(spells *Registry, effects *effect.Registry, src dice.Source, logger *zap.Logger) *Caster {
	return &Caster{spells: spells, effects: effects, src: src, logger: logger}
}

// Cast resolves caster casting the spell called name. Heals and buffs land on
// the caster; damage and damage-over-time land on target. Every check runs
// before mana is spent, so a refused cast costs nothing.
//
// Postcondition: ErrUnknownSpell for names not defined or not in the caster's
// spell book; ErrLevelTooLow; ErrNotEnoughMana; entity.ErrAlreadyDead for a
// dead target. Any other error is a configuration error.
func (c *Caster) Cast(caster *entity.Character, target entity.Combatant, name string) (Result, error) {
	def, err := c.spells.ByName(name)
	if err != nil {
		return Result{}, err
	}
	if !caster.KnowsSpell(def.ID) {
		return Result{}, fmt.Errorf("%s does not know %q: %w", caster.Name(), def.Name, ErrUnknownSpell)
	}
	if caster.Level() < def.LevelRequired {
		return Result{}, fmt.Errorf("%q requires level %d: %w", def.Name, def.LevelRequired, ErrLevelTooLow)
	}
	if caster.Mana() < def.ManaCost {
		return Result{}, fmt.Errorf("%q costs %.0f mana: %w", def.Name, def.ManaCost, ErrNotEnoughMana)
	}
	if def.Kind == KindDamage && !target.Living().Alive() {
		return Result{}, fmt.Errorf("casting %q on %s: %w", def.Name, target.Living().Name(), entity.ErrAlreadyDead)
	}
	var eff effect.Effect
	if def.Kind == KindEffect {
		eff, err = c.effects.New(def.Effect, caster.Level())
		if err != nil {
			return Result{}, fmt.Errorf("casting %q: %w", def.Name, err)
		}
		if eff.Phase() == effect.PhaseStartOfTurn && !target.Living().Alive() {
			return Result{}, fmt.Errorf("casting %q on %s: %w", def.Name, target.Living().Name(), entity.ErrAlreadyDead)
		}
	}
	if err := caster.SpendMana(def.ManaCost); err != nil {
		return Result{}, err
	}

	res := Result{Spell: def}
	switch def.Kind {
	case KindDamage:
		amount := rules.ScaleByLevel(c.roll(def.Amount), caster.Level(), target.Living().Level())
		d := damage.Physical(amount)
		if def.School == "magical" {
			d = damage.Magical(amount)
		}
		hit, err := target.TakeAttack(d, caster.Level())
		if err != nil {
			return Result{}, err
		}
		res.Target = target.Living().Name()
		res.Hit = &hit
	case KindHeal, KindHolyHeal, KindProtectiveHeal:
		h := c.heal(def)
		res.Target = caster.Name()
		res.Heal = &h
		res.Healed = h.ApplyTo(caster.LivingThing)
	case KindEffect:
		host := caster.LivingThing
		if eff.Phase() == effect.PhaseStartOfTurn {
			host = target.Living()
		}
		refreshed, err := host.AddEffect(eff)
		if err != nil {
			return Result{}, err
		}
		res.Target = host.Name()
		res.Effect = eff
		res.Refreshed = refreshed
	}
	c.logger.Debug("spell cast",
		zap.String("caster", caster.Name()),
		zap.String("spell", def.ID),
		zap.String("target", res.Target),
		zap.Float64("mana_left", caster.Mana()),
	)
	return res, nil
}

func (c *Caster) heal(def *Definition) Heal {
	amount := c.roll(def.Amount)
	switch def.Kind {
	case KindHolyHeal:
		return NewHolyHeal(amount, c.src)
	case KindProtectiveHeal:
		return NewProtectiveHeal(amount)
	default:
		return NewHeal(amount)
	}
}

func (c *Caster) roll(r Range) float64 {
	return float64(dice.Range(c.src, int(math.Floor(r.Min)), int(math.Floor(r.Max))))
}
