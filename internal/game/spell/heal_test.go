package spell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/spell"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func TestHeal_String(t *testing.T) {
	assert.Equal(t, "5.11", spell.NewHeal(5.111).String())
	assert.Equal(t, "50.00 (17.50 shield)", spell.NewProtectiveHeal(50).String())
	assert.Equal(t, "10.00 crit", spell.NewHolyHeal(5, fixedSrc{val: 0}).String())
}

func TestHeal_AddSub(t *testing.T) {
	h := spell.NewHeal(5)
	assert.Equal(t, 15.0, h.Add(10).Amount)
	assert.Equal(t, 2.0, h.Sub(3).Amount)
	assert.Equal(t, 0.0, h.Sub(10).Amount)
	assert.Equal(t, spell.NewHeal(5), spell.NewHeal(5))
}

func TestHolyHeal_CritRoll(t *testing.T) {
	crit := spell.NewHolyHeal(5, fixedSrc{val: 29})
	assert.True(t, crit.Crit)
	assert.Equal(t, 10.0, crit.Amount)

	plain := spell.NewHolyHeal(5, fixedSrc{val: 30})
	assert.False(t, plain.Crit)
	assert.Equal(t, 5.0, plain.Amount)
}

func TestProtectiveHeal_ShieldAppliedOnce(t *testing.T) {
	c := entity.NewCharacter(entity.CharacterConfig{Name: "Aldric", Health: 200})
	_, err := c.TakeAttack(damage.Magical(100), 1)
	assert.NoError(t, err)

	h := spell.NewProtectiveHeal(50)
	assert.Equal(t, 17.5, h.Shield)
	healed := h.ApplyTo(c.LivingThing)
	assert.Equal(t, 50.0, healed)
	assert.Equal(t, 150.0, c.Health())
	assert.Equal(t, 17.5, c.Shield())
}

func TestHeal_DeadTargetNotHealed(t *testing.T) {
	c := entity.NewCharacter(entity.CharacterConfig{Name: "Aldric", Health: 10})
	_, err := c.TakeAttack(damage.Magical(100), 1)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, spell.NewProtectiveHeal(50).ApplyTo(c.LivingThing))
	assert.Equal(t, 0.0, c.Shield())
}

func TestPropertyHolyHeal_CritRateNearThirtyPercent(t *testing.T) {
	src := dice.NewSeededSource(7)
	crits := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if spell.NewHolyHeal(5, src).Crit {
			crits++
		}
	}
	assert.InDelta(t, 0.30, float64(crits)/n, 0.03)
}

func TestPropertyHeal_NeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Float64Range(-100, 100).Draw(rt, "a")
		b := rapid.Float64Range(-100, 100).Draw(rt, "b")
		assert.GreaterOrEqual(rt, spell.NewHeal(a).Sub(b).Amount, 0.0)
		assert.GreaterOrEqual(rt, spell.NewHeal(a).Add(b).Amount, 0.0)
	})
}
