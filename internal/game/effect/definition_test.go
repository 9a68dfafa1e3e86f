package effect_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

func TestDefinition_Validate(t *testing.T) {
	valid := []*effect.Definition{
		{ID: "might", Name: "Might", Kind: effect.KindBuff, Duration: 3, Attributes: map[string]float64{"strength": 10}},
		{ID: "burn", Name: "Burn", Kind: effect.KindDoT, Duration: 2, Damage: effect.DamageDef{Magical: 4}},
	}
	for _, d := range valid {
		assert.NoError(t, d.Validate(), d.ID)
	}

	invalid := []*effect.Definition{
		{Name: "NoID", Kind: effect.KindBuff, Duration: 1, Attributes: map[string]float64{"armor": 1}},
		{ID: "x", Kind: effect.KindBuff, Duration: 1, Attributes: map[string]float64{"armor": 1}},
		{ID: "x", Name: "X", Kind: "aura", Duration: 1},
		{ID: "x", Name: "X", Kind: effect.KindBuff, Duration: 0, Attributes: map[string]float64{"armor": 1}},
		{ID: "x", Name: "X", Kind: effect.KindBuff, Duration: 1},
		{ID: "x", Name: "X", Kind: effect.KindBuff, Duration: 1, Attributes: map[string]float64{"luck": 1}},
		{ID: "x", Name: "X", Kind: effect.KindDoT, Duration: 1},
		{ID: "x", Name: "X", Kind: effect.KindDoT, Duration: 1, Damage: effect.DamageDef{Physical: -2, Magical: 5}},
	}
	for i, d := range invalid {
		assert.Error(t, d.Validate(), "case %d", i)
	}
}

func TestRegistry_New(t *testing.T) {
	reg := effect.NewRegistry()
	reg.Register(&effect.Definition{ID: "burn", Name: "Burn", Kind: effect.KindDoT, Duration: 2, Damage: effect.DamageDef{Magical: 4}})
	reg.Register(&effect.Definition{ID: "might", Name: "Might", Kind: effect.KindBuff, Duration: 3, Attributes: map[string]float64{"strength": 10}})

	e, err := reg.New("burn", 7)
	require.NoError(t, err)
	assert.Equal(t, effect.PhaseStartOfTurn, e.Phase())
	d, lvl, ok := e.Tick()
	require.True(t, ok)
	assert.Equal(t, 7, lvl)
	assert.Equal(t, damage.Magical(4), d)

	e, err = reg.New("might", 1)
	require.NoError(t, err)
	assert.Equal(t, effect.PhaseEndOfTurn, e.Phase())
	b := stat.NewBag(nil)
	e.Apply(b)
	assert.Equal(t, 10.0, b.Get(stat.Strength))

	_, err = reg.New("missing", 1)
	assert.True(t, errors.Is(err, effect.ErrUnknownEffect))
}

func TestLoadDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	doc := `
id: consecration
name: Consecration
description: "Holy ground burns the wicked."
kind: dot
duration: 3
damage:
  magical: 6
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "consecration.yaml"), []byte(doc), 0644))

	reg, err := effect.LoadDirectory(dir)
	require.NoError(t, err)
	got, ok := reg.Get("consecration")
	require.True(t, ok)
	assert.Equal(t, "Consecration", got.Name)
	assert.Equal(t, 3, got.Duration)
	assert.Equal(t, 6.0, got.Damage.Magical)
}

func TestLoadDirectory_UnknownField_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: x\nname: X\nkind: buff\nduration: 1\nstacks: 2\n"), 0644))
	_, err := effect.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_InvalidDefinition_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: x\nname: X\nkind: buff\nduration: 0\n"), 0644))
	_, err := effect.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_NonexistentDir_ReturnsError(t *testing.T) {
	_, err := effect.LoadDirectory("/nonexistent/effects")
	assert.Error(t, err)
}

func TestLoadDirectory_RealContent(t *testing.T) {
	reg, err := effect.LoadDirectory("../../../content/effects")
	require.NoError(t, err)
	for _, id := range []string{"blessing_of_might", "fortitude", "devotion", "consecration", "rend"} {
		_, ok := reg.Get(id)
		assert.True(t, ok, "effect %q must be present", id)
	}
}

func TestPropertyRegistry_RegisterThenGet(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.StringMatching(`[a-z_]{3,12}`).Draw(rt, "id")
		reg := effect.NewRegistry()
		def := &effect.Definition{ID: id, Name: id, Kind: effect.KindDoT, Duration: 1, Damage: effect.DamageDef{Physical: 1}}
		reg.Register(def)
		got, ok := reg.Get(id)
		assert.True(rt, ok)
		assert.Equal(rt, def, got)
	})
}
