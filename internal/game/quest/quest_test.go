package quest_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/quest"
)

func wolfQuest() *quest.KillQuest {
	return &quest.KillQuest{ID: "wolf_cull", Name: "Thinning the Pack", RequiredMonster: "forest_wolf",
		RequiredKills: 3, XPReward: 250, LevelRequired: 1}
}

type fakeQuestor struct {
	log       *quest.Log
	kills     []string
	completed []string
}

func (f *fakeQuestor) Name() string               { return "Aldric" }
func (f *fakeQuestor) QuestLog() *quest.Log       { return f.log }
func (f *fakeQuestor) RecordMonsterKill(g string) { f.kills = append(f.kills, g) }
func (f *fakeQuestor) CompleteQuest(id string)    { f.completed = append(f.completed, id) }

func TestKillQuest_Validate(t *testing.T) {
	assert.NoError(t, wolfQuest().Validate())
	q := wolfQuest()
	q.RequiredKills = 0
	assert.Error(t, q.Validate())
}

func TestKillQuest_String(t *testing.T) {
	assert.Equal(t, "Thinning the Pack - Requires 3 forest_wolf kills. Rewards 250 experience.", wolfQuest().String())
}

func TestLog_Accept(t *testing.T) {
	l := quest.NewLog()
	require.NoError(t, l.Accept(wolfQuest(), 1))
	assert.True(t, l.Has("wolf_cull"))
	assert.ErrorIs(t, l.Accept(wolfQuest(), 1), quest.ErrAlreadyAccepted)

	hard := wolfQuest()
	hard.ID = "hard"
	hard.LevelRequired = 5
	assert.ErrorIs(t, l.Accept(hard, 4), quest.ErrLevelTooLow)
}

func TestLog_RecordKill_CompletesAndRemoves(t *testing.T) {
	l := quest.NewLog()
	require.NoError(t, l.Accept(wolfQuest(), 1))

	_, done := l.RecordKill("forest_wolf")
	assert.Empty(t, done)
	_, done = l.RecordKill("bandit")
	assert.Empty(t, done)
	_, done = l.RecordKill("forest_wolf")
	assert.Empty(t, done)
	assert.Equal(t, 2, l.Kills("wolf_cull"))

	_, done = l.RecordKill("forest_wolf")
	require.Len(t, done, 1)
	assert.Equal(t, "wolf_cull", done[0].ID)
	assert.False(t, l.Has("wolf_cull"))
}

func TestLog_RecordKill_EmptyRelationIgnored(t *testing.T) {
	l := quest.NewLog()
	require.NoError(t, l.Accept(wolfQuest(), 1))
	adv, done := l.RecordKill("")
	assert.Empty(t, adv)
	assert.Empty(t, done)
}

func TestRestoreLog(t *testing.T) {
	reg := quest.NewRegistry()
	reg.Register(wolfQuest())

	l, err := quest.RestoreLog([]quest.Progress{{QuestID: "wolf_cull", Kills: 2}}, reg)
	require.NoError(t, err)
	assert.Equal(t, []quest.Progress{{QuestID: "wolf_cull", Kills: 2}}, l.Progress())

	_, err = quest.RestoreLog([]quest.Progress{{QuestID: "missing"}}, reg)
	assert.ErrorIs(t, err, quest.ErrUnknownQuest)
}

func TestTracker_NotifyKill(t *testing.T) {
	q := &fakeQuestor{log: quest.NewLog()}
	require.NoError(t, q.log.Accept(wolfQuest(), 1))
	tr := quest.NewTracker(zap.NewNop())

	for i := 0; i < 2; i++ {
		assert.Empty(t, tr.NotifyKill(q, quest.Kill{MonsterGUID: "g", MonsterLevel: 1, QuestRelationID: "forest_wolf"}))
	}
	done := tr.NotifyKill(q, quest.Kill{MonsterGUID: "g3", MonsterLevel: 1, QuestRelationID: "forest_wolf"})
	require.Len(t, done, 1)
	assert.Equal(t, []string{"wolf_cull"}, q.completed)
	assert.Len(t, q.kills, 3)
}

func TestLoadDirectory_RealContent(t *testing.T) {
	reg, err := quest.LoadDirectory(filepath.Join("..", "..", "..", "content", "quests"))
	require.NoError(t, err)
	q, err := reg.Get("wolf_cull")
	require.NoError(t, err)
	assert.Equal(t, "forest_wolf", q.RequiredMonster)
	assert.Len(t, reg.All(), 2)
}

func TestPropertyLog_CompletesExactlyOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		required := rapid.IntRange(1, 10).Draw(rt, "required")
		kills := rapid.IntRange(0, 20).Draw(rt, "kills")
		q := wolfQuest()
		q.RequiredKills = required

		l := quest.NewLog()
		require.NoError(rt, l.Accept(q, 1))
		completions := 0
		for i := 0; i < kills; i++ {
			_, done := l.RecordKill("forest_wolf")
			completions += len(done)
		}
		if kills >= required {
			assert.Equal(rt, 1, completions)
			assert.False(rt, l.Has(q.ID))
		} else {
			assert.Equal(rt, 0, completions)
			assert.Equal(rt, kills, l.Kills(q.ID))
		}
	})
}
