package quest

import "go.uber.org/zap"

// Kill describes a monster death reported to the tracker.
type Kill struct {
	MonsterGUID     string
	MonsterLevel    int
	QuestRelationID string
}

// Questor is the character-side state the tracker updates.
type Questor interface {
	Name() string
	QuestLog() *Log
	RecordMonsterKill(guid string)
	CompleteQuest(id string)
}

// Tracker receives kill notifications and advances kill quests.
type Tracker struct {
	logger *zap.Logger
}

// NewTracker creates a Tracker.
//
// Precondition: logger must be non-nil.
func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// NotifyKill records the kill on q and advances matching quests.
//
// Postcondition: every returned quest id is in q's completed set and no
// longer in its log. Awarding the quest experience is left to the caller.
func (t *Tracker) NotifyKill(q Questor, k Kill) []*KillQuest {
	q.RecordMonsterKill(k.MonsterGUID)
	advanced, completed := q.QuestLog().RecordKill(k.QuestRelationID)
	for _, e := range advanced {
		t.logger.Debug("quest progress",
			zap.String("character", q.Name()),
			zap.String("quest", e.Quest.ID),
			zap.Int("kills", e.Kills),
			zap.Int("required", e.Quest.RequiredKills),
		)
	}
	for _, kq := range completed {
		q.CompleteQuest(kq.ID)
		t.logger.Info("quest completed",
			zap.String("character", q.Name()),
			zap.String("quest", kq.ID),
			zap.Int("xp_reward", kq.XPReward),
		)
	}
	return completed
}
