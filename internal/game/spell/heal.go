package spell

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
)

const (
	// HolyHealCritChance is the percent chance a holy heal doubles.
	HolyHealCritChance = 30
	// ProtectiveHealAbsorbPercent is the share of a protective heal granted as a shield.
	ProtectiveHealAbsorbPercent = 35
)

// Heal is an amount of health to restore, optionally critical or carrying a shield.
type Heal struct {
	Amount float64
	Crit   bool
	Shield float64
}

// NewHeal returns a plain heal of amount, floored at zero.
func NewHeal(amount float64) Heal {
	return Heal{Amount: math.Max(0, amount)}
}

// NewHolyHeal rolls the holy heal critical chance; a critical doubles the amount.
func NewHolyHeal(amount float64, src dice.Source) Heal {
	h := NewHeal(amount)
	if dice.Chance(src, HolyHealCritChance) {
		h.Amount *= 2
		h.Crit = true
	}
	return h
}

// NewProtectiveHeal returns a heal that also grants a shield worth
// ProtectiveHealAbsorbPercent of the amount, rounded to hundredths.
func NewProtectiveHeal(amount float64) Heal {
	h := NewHeal(amount)
	h.Shield = damage.RoundHit(h.Amount * ProtectiveHealAbsorbPercent / 100)
	return h
}

// Add returns h with v more healing.
func (h Heal) Add(v float64) Heal {
	h.Amount = math.Max(0, h.Amount+v)
	return h
}

// Sub returns h with v less healing, never below zero.
func (h Heal) Sub(v float64) Heal {
	h.Amount = math.Max(0, h.Amount-v)
	return h
}

// ApplyTo heals target and grants any shield once. It returns the health
// actually restored.
func (h Heal) ApplyTo(target *entity.LivingThing) float64 {
	if !target.Alive() {
		return 0
	}
	target.AddShield(h.Shield)
	return target.Heal(h.Amount)
}

func (h Heal) String() string {
	switch {
	case h.Crit:
		return fmt.Sprintf("%.2f crit", h.Amount)
	case h.Shield > 0:
		return fmt.Sprintf("%.2f (%.2f shield)", h.Amount, h.Shield)
	default:
		return fmt.Sprintf("%.2f", h.Amount)
	}
}
