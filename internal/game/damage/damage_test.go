package damage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
)

func TestNew_FloorsNegativeComponents(t *testing.T) {
	d := damage.New(-3, -1)
	assert.Equal(t, damage.Damage{}, d)
	assert.True(t, d.IsZero())
}

func TestAdd(t *testing.T) {
	d := damage.New(4, 1).Add(damage.New(2, 3))
	assert.Equal(t, damage.Damage{Physical: 6, Magical: 4}, d)
	assert.Equal(t, 10.0, d.Total())
}

func TestSub_FloorsAtZero(t *testing.T) {
	d := damage.New(5, 1).Sub(damage.New(10, 0.5))
	assert.Equal(t, 0.0, d.Physical)
	assert.Equal(t, 0.5, d.Magical)
}

func TestScale(t *testing.T) {
	assert.Equal(t, damage.Damage{Physical: 12, Magical: 3}, damage.New(8, 2).Scale(1.5))
	assert.True(t, damage.New(8, 2).Scale(-1).IsZero())
}

func TestAbsorb_PhysicalFirst(t *testing.T) {
	reduced, left := damage.New(5, 5).Absorb(7)
	assert.Equal(t, damage.Damage{Physical: 0, Magical: 3}, reduced)
	assert.Equal(t, 0.0, left)
}

func TestAbsorb_LeftoverCapacity(t *testing.T) {
	reduced, left := damage.New(2, 1).Absorb(10)
	assert.True(t, reduced.IsZero())
	assert.Equal(t, 7.0, left)
}

func TestAbsorb_NoCapacity(t *testing.T) {
	d := damage.New(3, 4)
	reduced, left := d.Absorb(0)
	assert.Equal(t, d, reduced)
	assert.Equal(t, 0.0, left)
}

func TestRoundHit(t *testing.T) {
	assert.Equal(t, 2.61, damage.RoundHit(2.6086956))
	assert.Equal(t, 8.0, damage.RoundHit(8))
}

func TestString(t *testing.T) {
	assert.Equal(t, "8.00", damage.Physical(8).String())
	assert.Equal(t, "4.50 magic", damage.Magical(4.5).String())
	assert.Equal(t, "6.00 (4.00 phys, 2.00 magic)", damage.New(4, 2).String())
}

func TestPropertyAbsorb_Conservative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		phys := rapid.Float64Range(0, 1000).Draw(rt, "phys")
		magic := rapid.Float64Range(0, 1000).Draw(rt, "magic")
		capacity := rapid.Float64Range(0, 2000).Draw(rt, "capacity")

		d := damage.New(phys, magic)
		reduced, left := d.Absorb(capacity)
		absorbed := capacity - left

		assert.GreaterOrEqual(rt, reduced.Physical, 0.0)
		assert.GreaterOrEqual(rt, reduced.Magical, 0.0)
		assert.GreaterOrEqual(rt, left, 0.0)
		assert.LessOrEqual(rt, absorbed, capacity+1e-9, "absorbed must never exceed capacity")
		assert.InDelta(rt, d.Total(), reduced.Total()+absorbed, 1e-6)
	})
}

func TestPropertySub_NeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := damage.New(rapid.Float64Range(0, 100).Draw(rt, "ap"), rapid.Float64Range(0, 100).Draw(rt, "am"))
		b := damage.New(rapid.Float64Range(0, 100).Draw(rt, "bp"), rapid.Float64Range(0, 100).Draw(rt, "bm"))
		d := a.Sub(b)
		assert.GreaterOrEqual(rt, d.Physical, 0.0)
		assert.GreaterOrEqual(rt, d.Magical, 0.0)
	})
}
