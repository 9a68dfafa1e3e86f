package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

func TestRange_FixedSource(t *testing.T) {
	assert.Equal(t, 8, dice.Range(fixedSrc{val: 3}, 5, 10))
	assert.Equal(t, 5, dice.Range(fixedSrc{val: 0}, 10, 5), "bounds are swapped")
}

func TestRange_Degenerate(t *testing.T) {
	assert.Equal(t, 0, dice.Range(dice.NewCryptoSource(), 0, 0))
}

func TestChance_Bounds(t *testing.T) {
	src := fixedSrc{val: 99}
	assert.False(t, dice.Chance(src, 0))
	assert.True(t, dice.Chance(src, 100))
	assert.False(t, dice.Chance(fixedSrc{val: 30}, 30))
	assert.True(t, dice.Chance(fixedSrc{val: 29}, 30))
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestRoller_LogsRange(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(fixedSrc{val: 2}, zap.New(core))

	res := r.Range("swing", 2, 4)
	assert.Equal(t, 4, res.Value)
	assert.Equal(t, "swing [2..4] = 4", res.String())

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "dice roll", entry.Message)
	assert.EqualValues(t, 4, entry.ContextMap()["value"])
}

func TestRoller_IsASource(t *testing.T) {
	var src dice.Source = dice.NewLoggedRoller(fixedSrc{val: 1}, zap.NewNop())
	assert.Equal(t, 1, src.Intn(10))
}

func TestPropertyRange_WithinBounds(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-50, 50).Draw(rt, "lo")
		hi := rapid.IntRange(-50, 50).Draw(rt, "hi")
		v := dice.Range(src, lo, hi)
		assert.GreaterOrEqual(rt, v, min(lo, hi))
		assert.LessOrEqual(rt, v, max(lo, hi))
	})
}
