package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func dummy(level int, health float64, armor float64) *entity.Monster {
	return entity.NewMonster(entity.MonsterConfig{
		GUID: "dummy-1", TemplateID: "training_dummy", Name: "Training Dummy",
		Level: level, Health: health, MinDamage: 1, MaxDamage: 1,
		Attributes: map[stat.Key]float64{stat.Armor: armor},
	})
}

func TestStartOfTurn_DoTAgainstHalfMitigation(t *testing.T) {
	// 485 armor against a level 1 source mitigates exactly half.
	host := dummy(1, 100, 485)
	_, err := host.AddEffect(effect.NewDoT("Rend", 3, damage.Physical(10), 1))
	require.NoError(t, err)

	for i, want := range []float64{95, 90, 85} {
		ts, err := combat.StartOfTurn(host)
		require.NoError(t, err)
		require.Len(t, ts.Ticks, 1, "turn %d", i+1)
		assert.InDelta(t, 5.0, ts.Ticks[0].Hit.Dealt, 1e-9)
		assert.InDelta(t, want, host.Health(), 1e-9)
		if i < 2 {
			assert.Empty(t, ts.Expired)
		} else {
			require.Len(t, ts.Expired, 1)
			assert.Equal(t, "Rend", ts.Expired[0].Name())
		}
	}

	ts, err := combat.StartOfTurn(host)
	require.NoError(t, err)
	assert.Empty(t, ts.Ticks)
	assert.InDelta(t, 85.0, host.Health(), 1e-9)
	assert.False(t, host.Effects().Has("Rend"))
}

func TestStartOfTurn_ScaledBySourceLevel(t *testing.T) {
	host := dummy(1, 100, 0)
	_, err := host.AddEffect(effect.NewDoT("Consecration", 2, damage.Magical(10), 3))
	require.NoError(t, err)

	ts, err := combat.StartOfTurn(host)
	require.NoError(t, err)
	require.Len(t, ts.Ticks, 1)
	assert.Equal(t, 3, ts.Ticks[0].SourceLevel)
	assert.InDelta(t, 12.0, ts.Ticks[0].Scaled.Magical, 1e-9)
	assert.InDelta(t, 88.0, host.Health(), 1e-9)
}

func TestStartOfTurn_ShieldAbsorbsTick(t *testing.T) {
	host := dummy(1, 100, 0)
	host.AddShield(4)
	_, err := host.AddEffect(effect.NewDoT("Rend", 2, damage.Physical(10), 1))
	require.NoError(t, err)

	ts, err := combat.StartOfTurn(host)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, ts.Ticks[0].Hit.Absorbed, 1e-9)
	assert.InDelta(t, 94.0, host.Health(), 1e-9)
	assert.Zero(t, host.Shield())
}

func TestStartOfTurn_StopsTickingOnDeath(t *testing.T) {
	host := dummy(1, 5, 0)
	_, err := host.AddEffect(effect.NewDoT("Bleed", 3, damage.Physical(10), 1))
	require.NoError(t, err)
	_, err = host.AddEffect(effect.NewDoT("Rend", 3, damage.Physical(10), 1))
	require.NoError(t, err)

	ts, err := combat.StartOfTurn(host)
	require.NoError(t, err)
	require.Len(t, ts.Ticks, 1)
	assert.Equal(t, "Bleed", ts.Ticks[0].Effect)
	assert.True(t, ts.Ticks[0].Killed)
	assert.False(t, host.Alive())
	assert.Zero(t, host.Health())
}

func TestStartOfTurn_LeavesBuffsAlone(t *testing.T) {
	host := dummy(1, 100, 0)
	_, err := host.AddEffect(effect.NewBuff("Fortitude", 1, stat.Deltas{stat.BonusHealth: 30}))
	require.NoError(t, err)

	ts, err := combat.StartOfTurn(host)
	require.NoError(t, err)
	assert.Empty(t, ts.Ticks)
	assert.Empty(t, ts.Expired)
	assert.Equal(t, 1, host.Effects().Remaining("Fortitude"))
}

func TestEndOfTurn_BuffExpiresAndReverses(t *testing.T) {
	host := dummy(1, 100, 0)
	_, err := host.AddEffect(effect.NewBuff("Fortitude", 2, stat.Deltas{stat.BonusHealth: 30}))
	require.NoError(t, err)
	assert.Equal(t, 130.0, host.MaxHealth())
	assert.Equal(t, 130.0, host.Health())

	assert.Empty(t, combat.EndOfTurn(host))
	assert.Equal(t, 130.0, host.MaxHealth())

	expired := combat.EndOfTurn(host)
	require.Len(t, expired, 1)
	assert.Equal(t, 100.0, host.MaxHealth())
	assert.Equal(t, 100.0, host.Health())
	assert.Zero(t, host.Attribute(stat.BonusHealth))
}

func TestEndOfTurn_LeavesDoTsAlone(t *testing.T) {
	host := dummy(1, 100, 0)
	_, err := host.AddEffect(effect.NewDoT("Rend", 1, damage.Physical(3), 1))
	require.NoError(t, err)
	assert.Empty(t, combat.EndOfTurn(host))
	assert.True(t, host.Effects().Has("Rend"))
	assert.Equal(t, 100.0, host.Health())
}

func TestAttack_DeadVictim(t *testing.T) {
	a := dummy(1, 100, 0)
	v := dummy(1, 1, 0)
	_, err := v.TakeAttack(damage.Physical(5), 1)
	require.NoError(t, err)

	_, err = combat.Attack(a, v, fixedSrc{})
	assert.ErrorIs(t, err, entity.ErrAlreadyDead)
}

func TestAttack_KillingBlow(t *testing.T) {
	a := entity.NewMonster(entity.MonsterConfig{Name: "Ogre", Level: 1, Health: 10, MinDamage: 8, MaxDamage: 8})
	v := dummy(1, 8, 0)
	b, err := combat.Attack(a, v, fixedSrc{})
	require.NoError(t, err)
	assert.Equal(t, 8, b.Swing.Raw)
	assert.InDelta(t, 8.0, b.Hit.Dealt, 1e-9)
	assert.True(t, b.Killed)
	assert.Equal(t, "Ogre", b.Attacker)
	assert.Equal(t, "Training Dummy", b.Victim)
}

func TestProperty_DoTTicksExactlyDuration(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		duration := rapid.IntRange(1, 8).Draw(t, "duration")
		perTick := float64(rapid.IntRange(0, 5).Draw(t, "perTick"))
		host := dummy(1, 1000, 0)
		if _, err := host.AddEffect(effect.NewDoT("Rend", duration, damage.Physical(perTick), 1)); err != nil {
			t.Fatal(err)
		}
		ticks := 0
		for i := 0; i < duration+3; i++ {
			ts, err := combat.StartOfTurn(host)
			if err != nil {
				t.Fatal(err)
			}
			ticks += len(ts.Ticks)
		}
		if ticks != duration {
			t.Fatalf("ticked %d times, want %d", ticks, duration)
		}
		want := 1000 - perTick*float64(duration)
		if host.Health() != want {
			t.Fatalf("health %v, want %v", host.Health(), want)
		}
	})
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		line  string
		kind  combat.CommandKind
		spell string
	}{
		{"attack", combat.CommandAttack, ""},
		{"  ATTACK ", combat.CommandAttack, ""},
		{"a", combat.CommandAttack, ""},
		{"flee", combat.CommandFlee, ""},
		{"run", combat.CommandFlee, ""},
		{"stats", combat.CommandStats, ""},
		{"print stats", combat.CommandStats, ""},
		{"cast Holy Light", combat.CommandCast, "Holy Light"},
		{"CAST  holy shock", combat.CommandCast, "holy shock"},
		{"cast", combat.CommandUnknown, ""},
		{"attack wolf", combat.CommandUnknown, ""},
		{"dance", combat.CommandUnknown, ""},
		{"", combat.CommandUnknown, ""},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			cmd := combat.ParseCommand(tc.line)
			assert.Equal(t, tc.kind, cmd.Kind)
			assert.Equal(t, tc.spell, cmd.Spell)
		})
	}
}

func TestCommandKind_ConsumesTurn(t *testing.T) {
	assert.True(t, combat.CommandAttack.ConsumesTurn())
	assert.True(t, combat.CommandFlee.ConsumesTurn())
	assert.True(t, combat.CommandCast.ConsumesTurn())
	assert.False(t, combat.CommandStats.ConsumesTurn())
	assert.False(t, combat.CommandUnknown.ConsumesTurn())
}
