package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/rules"
)

func TestScaleByLevel(t *testing.T) {
	assert.InDelta(t, 8.0, rules.ScaleByLevel(8, 1, 1), 1e-9)
	assert.InDelta(t, 15.0, rules.ScaleByLevel(10, 10, 5), 1e-9)
	assert.InDelta(t, 5.0, rules.ScaleByLevel(10, 5, 10), 1e-9)
	assert.InDelta(t, 0.0, rules.ScaleByLevel(10, 1, 15), 1e-9, "never negative")
}

func TestScaleByLevel_Symmetric(t *testing.T) {
	base := 20.0
	up := rules.ScaleByLevel(base, 10, 5) - base
	down := base - rules.ScaleByLevel(base, 5, 10)
	assert.InDelta(t, up, down, 1e-9)
}

func TestMitigationFraction_ReferenceValue(t *testing.T) {
	assert.InDelta(t, 75.0/560.0, rules.MitigationFraction(75, 1), 1e-12)
	assert.Equal(t, 0.0, rules.MitigationFraction(0, 1))
	assert.Equal(t, 0.0, rules.MitigationFraction(-20, 1))
}

func TestMitigate_MagicalPassesThrough(t *testing.T) {
	out, reduced := rules.Mitigate(damage.New(10, 4), 400+85, 1)
	assert.InDelta(t, 5.0, out.Physical, 1e-9)
	assert.InDelta(t, 5.0, reduced, 1e-9)
	assert.Equal(t, 4.0, out.Magical)
}

func TestResolveHit_ReferenceScenario(t *testing.T) {
	h := rules.ResolveHit(damage.Physical(3), 75, 1, 0)
	assert.InDelta(t, 2.6, h.Dealt, 1e-9)
	assert.Equal(t, 0.0, h.Absorbed)
}

func TestResolveHit_FullyAbsorbed(t *testing.T) {
	h := rules.ResolveHit(damage.Physical(10), 0, 1, 25)
	assert.Equal(t, 0.0, h.Dealt)
	assert.Equal(t, 10.0, h.Absorbed)
	assert.Equal(t, 15.0, h.ShieldLeft)
}

func TestResolveHit_MitigationBeforeAbsorption(t *testing.T) {
	// 10 physical with 50% mitigation leaves 5; a 5 shield soaks it all.
	h := rules.ResolveHit(damage.Physical(10), 485, 1, 5)
	assert.InDelta(t, 0.0, h.Dealt, 1e-9)
	assert.InDelta(t, 5.0, h.Absorbed, 1e-9)
}

func TestExperienceReward(t *testing.T) {
	assert.Equal(t, 10, rules.ExperienceReward(1, 1, 10))
	assert.Equal(t, 0, rules.ExperienceReward(7, 1, 10))
	assert.Equal(t, 0, rules.ExperienceReward(6, 1, 10))
	assert.Equal(t, 10, rules.ExperienceReward(5, 1, 10), "a 4-level lead still awards base")
	assert.Equal(t, 12, rules.ExperienceReward(1, 3, 10))
}

func TestPropertyMitigationFraction_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		armor := rapid.Float64Range(0, 1e6).Draw(rt, "armor")
		level := rapid.IntRange(1, 100).Draw(rt, "level")
		phys := rapid.Float64Range(0, 1e4).Draw(rt, "phys")

		f := rules.MitigationFraction(armor, level)
		assert.GreaterOrEqual(rt, f, 0.0)
		assert.Less(rt, f, 1.0)

		out, _ := rules.Mitigate(damage.Physical(phys), armor, level)
		assert.GreaterOrEqual(rt, out.Physical, 0.0)
		assert.LessOrEqual(rt, out.Physical, phys)
	})
}

func TestPropertyScaleByLevel_SymmetricPercent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hi := rapid.IntRange(2, 10).Draw(rt, "hi")
		lo := rapid.IntRange(1, hi-1).Draw(rt, "lo")
		base := rapid.Float64Range(1, 1000).Draw(rt, "base")

		increase := (rules.ScaleByLevel(base, hi, lo) - base) / base
		decrease := (base - rules.ScaleByLevel(base, lo, hi)) / base
		assert.InDelta(rt, increase, decrease, 1e-9)
	})
}

func TestPropertyResolveHit_Bounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := damage.New(rapid.Float64Range(0, 500).Draw(rt, "phys"), rapid.Float64Range(0, 500).Draw(rt, "magic"))
		armor := rapid.Float64Range(0, 2000).Draw(rt, "armor")
		shield := rapid.Float64Range(0, 300).Draw(rt, "shield")
		h := rules.ResolveHit(d, armor, rapid.IntRange(1, 60).Draw(rt, "level"), shield)

		assert.GreaterOrEqual(rt, h.Dealt, 0.0)
		assert.LessOrEqual(rt, h.Dealt, damage.RoundHit(d.Total())+0.01)
		assert.LessOrEqual(rt, h.Absorbed, shield+1e-9)
		assert.InDelta(rt, shield-h.Absorbed, h.ShieldLeft, 1e-9)
	})
}
