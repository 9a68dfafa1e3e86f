package quest

import (
	"fmt"
	"sort"
)

// Entry is an accepted quest and its kill count.
type Entry struct {
	Quest *KillQuest
	Kills int
}

// Complete reports whether the required kills have been reached.
func (e *Entry) Complete() bool { return e.Kills >= e.Quest.RequiredKills }

// Progress is the persisted form of an Entry.
type Progress struct {
	QuestID string `json:"quest_id"`
	Kills   int    `json:"kills"`
}

// Log is a character's set of accepted, unfinished quests.
type Log struct {
	entries map[string]*Entry
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{entries: make(map[string]*Entry)}
}

// Accept adds q to the log for a character at level.
//
// Postcondition: on success Has(q.ID) is true with zero kills.
func (l *Log) Accept(q *KillQuest, level int) error {
	if level < q.LevelRequired {
		return fmt.Errorf("accepting %q at level %d (requires %d): %w", q.ID, level, q.LevelRequired, ErrLevelTooLow)
	}
	if _, ok := l.entries[q.ID]; ok {
		return fmt.Errorf("accepting %q: %w", q.ID, ErrAlreadyAccepted)
	}
	l.entries[q.ID] = &Entry{Quest: q}
	return nil
}

// Has reports whether the quest is in the log.
func (l *Log) Has(id string) bool {
	_, ok := l.entries[id]
	return ok
}

// Kills returns the recorded kills for id, or 0.
func (l *Log) Kills(id string) int {
	if e, ok := l.entries[id]; ok {
		return e.Kills
	}
	return 0
}

// Entries returns the accepted quests ordered by id.
func (l *Log) Entries() []*Entry {
	out := make([]*Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quest.ID < out[j].Quest.ID })
	return out
}

// RecordKill advances every quest requiring relationID by one kill. Quests
// that become complete are removed from the log and returned ordered by id.
//
// Postcondition: no returned quest remains in the log.
func (l *Log) RecordKill(relationID string) (advanced []*Entry, completed []*KillQuest) {
	if relationID == "" {
		return nil, nil
	}
	for _, e := range l.Entries() {
		if e.Quest.RequiredMonster != relationID {
			continue
		}
		e.Kills++
		advanced = append(advanced, e)
		if e.Complete() {
			completed = append(completed, e.Quest)
			delete(l.entries, e.Quest.ID)
		}
	}
	return advanced, completed
}

// Progress returns the persisted form of the log.
func (l *Log) Progress() []Progress {
	out := make([]Progress, 0, len(l.entries))
	for _, e := range l.Entries() {
		out = append(out, Progress{QuestID: e.Quest.ID, Kills: e.Kills})
	}
	return out
}

// RestoreLog rebuilds a Log from saved progress.
//
// Postcondition: returns ErrUnknownQuest if any saved quest is not in reg.
func RestoreLog(progress []Progress, reg *Registry) (*Log, error) {
	l := NewLog()
	for _, p := range progress {
		q, err := reg.Get(p.QuestID)
		if err != nil {
			return nil, fmt.Errorf("restoring quest log: %w", err)
		}
		l.entries[q.ID] = &Entry{Quest: q, Kills: p.Kills}
	}
	return l, nil
}
