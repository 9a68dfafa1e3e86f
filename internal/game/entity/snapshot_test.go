package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/item"
	"github.com/cory-johannsen/skirmish/internal/game/quest"
	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

func catalogs(t *testing.T) (*item.Registry, *quest.Registry) {
	t.Helper()
	items := item.NewRegistry()
	require.NoError(t, items.Register(shortsword()))
	require.NoError(t, items.Register(&item.Def{ID: "boots", Name: "Boots", Kind: item.KindEquipment, Slot: item.SlotFeet,
		MaxStack: 1, Attributes: map[string]float64{"armor": 10, "agility": 1}}))
	quests := quest.NewRegistry()
	quests.Register(&quest.KillQuest{ID: "wolf_cull", Name: "Wolves", RequiredMonster: "forest_wolf",
		RequiredKills: 3, XPReward: 250, LevelRequired: 1})
	return items, quests
}

func TestSnapshot_ExcludesEquipmentAndEffects(t *testing.T) {
	items, _ := catalogs(t)
	c := newPaladin(t)
	boots, _ := items.Get("boots")
	_, err := c.Equip(boots)
	require.NoError(t, err)
	_, err = c.AddEffect(effect.NewBuff("might", 3, stat.Deltas{stat.Strength: 10}))
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, 75.0, snap.Attributes[stat.Armor])
	assert.Equal(t, 5.0, snap.Attributes[stat.Strength])
	assert.Equal(t, 0.0, snap.Attributes[stat.Agility])
	assert.Equal(t, "worn_shortsword", snap.WeaponID)
	assert.Equal(t, map[item.Slot]string{item.SlotFeet: "boots"}, snap.Equipment)
}

func TestRestoreCharacter_RoundTrip(t *testing.T) {
	items, quests := catalogs(t)
	c := newPaladin(t)
	boots, _ := items.Get("boots")
	_, err := c.Equip(boots)
	require.NoError(t, err)
	_, err = c.TakeAttack(damage.Magical(25), 1)
	require.NoError(t, err)
	q, err := quests.Get("wolf_cull")
	require.NoError(t, err)
	require.NoError(t, c.QuestLog().Accept(q, 1))
	c.QuestLog().RecordKill("forest_wolf")
	c.MarkScriptSeen("intro")
	c.RecordMonsterKill("wolf-1")
	c.LearnSpell("Holy Light")
	c.AddGold(17)
	c.AddExperience(120)
	require.NoError(t, c.Inventory().Add(&item.Def{ID: "wolf_pelt", Name: "Pelt", Kind: item.KindJunk, Stackable: true, MaxStack: 20}, 3))

	restored, err := entity.RestoreCharacter(c.Snapshot(), items, quests)
	require.NoError(t, err)

	assert.Equal(t, c.Derived(), restored.Derived())
	assert.Equal(t, c.Health(), restored.Health())
	assert.Equal(t, c.Mana(), restored.Mana())
	assert.Equal(t, 120, restored.Experience())
	assert.Equal(t, 17, restored.Gold())
	assert.Equal(t, 1, restored.QuestLog().Kills("wolf_cull"))
	assert.True(t, restored.HasSeenScript("intro"))
	assert.True(t, restored.HasKilled("wolf-1"))
	assert.True(t, restored.KnowsSpell("Holy Light"))
	assert.Equal(t, 3, restored.Inventory().Count("wolf_pelt"))
	assert.Equal(t, c.Snapshot(), restored.Snapshot())
}

func TestRestoreCharacter_UnknownWeapon(t *testing.T) {
	items, quests := catalogs(t)
	snap := newPaladin(t).Snapshot()
	snap.WeaponID = "excalibur"
	_, err := entity.RestoreCharacter(snap, items, quests)
	assert.Error(t, err)
}

func TestRestoreCharacter_DeadStaysDead(t *testing.T) {
	items, quests := catalogs(t)
	c := newPaladin(t)
	_, err := c.TakeAttack(damage.Magical(1000), 1)
	require.NoError(t, err)
	restored, err := entity.RestoreCharacter(c.Snapshot(), items, quests)
	require.NoError(t, err)
	assert.False(t, restored.Alive())
}
