// Package rules holds the pure combat formulas: level-difference scaling,
// armor mitigation, absorption and experience rewards. Nothing here fails for
// valid numeric input and nothing here mutates its arguments.
package rules

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
)

const (
	// LevelScaleStep is the fraction added or removed per level of difference.
	LevelScaleStep = 0.10
	// ArmorConstant and ArmorPerLevel shape the mitigation curve
	// armor / (armor + ArmorConstant + ArmorPerLevel*attackerLevel).
	ArmorConstant = 400.0
	ArmorPerLevel = 85.0
	// NoExperienceGap is the level lead at which a kill awards no experience.
	NoExperienceGap = 5
)

// LevelFactor returns the multiplier applied to damage travelling from a
// source of sourceLevel to a target of targetLevel.
//
// Postcondition: Returns 1 + 0.1*(source-target), floored at 0.
func LevelFactor(sourceLevel, targetLevel int) float64 {
	diff := sourceLevel - targetLevel
	percent := math.Abs(float64(diff)) * LevelScaleStep
	switch {
	case diff > 0:
		return 1 + percent
	case diff < 0:
		return math.Max(0, 1-percent)
	default:
		return 1
	}
}

// ScaleByLevel applies level-difference scaling to a raw amount. Called with
// the roles swapped it scales incoming damage from the defender's side, which
// is how damage-over-time uses the stored source level.
//
// Postcondition: Returns >= 0 for amount >= 0.
func ScaleByLevel(amount float64, sourceLevel, targetLevel int) float64 {
	return amount * LevelFactor(sourceLevel, targetLevel)
}

// ScaleDamage applies ScaleByLevel to both components of d.
func ScaleDamage(d damage.Damage, sourceLevel, targetLevel int) damage.Damage {
	return d.Scale(LevelFactor(sourceLevel, targetLevel))
}

// MitigationFraction returns the share of physical damage removed by armor
// against an attacker of attackerLevel.
//
// Precondition: attackerLevel >= 1; values below 1 are treated as 1.
// Postcondition: Returns a value in [0, 1). Negative armor mitigates nothing.
func MitigationFraction(armor float64, attackerLevel int) float64 {
	if armor <= 0 {
		return 0
	}
	if attackerLevel < 1 {
		attackerLevel = 1
	}
	return armor / (armor + ArmorConstant + ArmorPerLevel*float64(attackerLevel))
}

// Mitigate reduces the physical component of d by the armor fraction. The
// magical component passes through untouched.
//
// Postcondition: result.Physical <= d.Physical; reduced == d.Physical - result.Physical.
func Mitigate(d damage.Damage, armor float64, attackerLevel int) (result damage.Damage, reduced float64) {
	reduced = MitigationFraction(armor, attackerLevel) * d.Physical
	return damage.New(d.Physical-reduced, d.Magical), reduced
}

// Hit is the full breakdown of one incoming hit after mitigation and absorption.
type Hit struct {
	// Incoming is the damage as delivered, already level scaled.
	Incoming damage.Damage
	// Mitigated is the physical damage removed by armor.
	Mitigated float64
	// Absorbed is the damage soaked by the absorption shield.
	Absorbed float64
	// Final is what remains after mitigation and absorption.
	Final damage.Damage
	// Dealt is Final.Total() rounded to hundredths; the amount subtracted from health.
	Dealt float64
	// ShieldLeft is the shield capacity remaining after this hit.
	ShieldLeft float64
}

// ResolveHit runs the mandatory mitigate → absorb → round sequence for an
// already level-scaled hit against a target holding armor and shield.
// It is pure; callers decide whether to commit ShieldLeft.
//
// Postcondition: 0 <= Dealt <= Incoming.Total() (up to rounding);
// 0 <= Absorbed <= max(shield, 0).
func ResolveHit(incoming damage.Damage, armor float64, attackerLevel int, shield float64) Hit {
	mitigated, reduced := Mitigate(incoming, armor, attackerLevel)
	final, left := mitigated.Absorb(shield)
	absorbed := 0.0
	if shield > 0 {
		absorbed = shield - left
	}
	return Hit{
		Incoming:   incoming,
		Mitigated:  reduced,
		Absorbed:   absorbed,
		Final:      final,
		Dealt:      damage.RoundHit(final.Total()),
		ShieldLeft: math.Max(left, 0),
	}
}

// ExperienceReward returns the experience a character of charLevel earns for
// killing a monster of monsterLevel worth base experience.
//
// Postcondition: Returns 0 when charLevel-monsterLevel >= NoExperienceGap;
// base plus 10% per level when the monster is higher; base otherwise.
func ExperienceReward(charLevel, monsterLevel, base int) int {
	diff := charLevel - monsterLevel
	switch {
	case diff >= NoExperienceGap:
		return 0
	case diff < 0:
		bonus := float64(base) * LevelScaleStep * float64(-diff)
		return base + int(math.Round(bonus))
	default:
		return base
	}
}
