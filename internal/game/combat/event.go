package combat

import "fmt"

// EventKind classifies what an Event reports.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventEngage
	EventAttack
	EventTick
	EventEffectApplied
	EventEffectRefreshed
	EventEffectExpired
	EventCast
	EventCastRefused
	EventStats
	EventUnknownCommand
	EventDeath
	EventFled
	EventGold
	EventLoot
	EventLootLost
	EventQuestCompleted
	EventExperience
	EventLevelUp
	EventAnnouncement
	EventRevived
	EventRevivalDeclined
)

var eventNames = map[EventKind]string{
	EventEngage:          "engage",
	EventAttack:          "attack",
	EventTick:            "tick",
	EventEffectApplied:   "effect_applied",
	EventEffectRefreshed: "effect_refreshed",
	EventEffectExpired:   "effect_expired",
	EventCast:            "cast",
	EventCastRefused:     "cast_refused",
	EventStats:           "stats",
	EventUnknownCommand:  "unknown_command",
	EventDeath:           "death",
	EventFled:            "fled",
	EventGold:            "gold",
	EventLoot:            "loot",
	EventLootLost:        "loot_lost",
	EventQuestCompleted:  "quest_completed",
	EventExperience:      "experience",
	EventLevelUp:         "level_up",
	EventAnnouncement:    "announcement",
	EventRevived:         "revived",
	EventRevivalDeclined: "revival_declined",
}

// String returns the snake_case name of the kind.
func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event records one thing that happened during an encounter, with a
// narrative line for text frontends. Amount carries the headline number of
// the event, such as damage dealt or gold looted.
type Event struct {
	Kind      EventKind
	Round     int
	Actor     string
	Target    string
	Amount    float64
	Narrative string
}

func (e Event) String() string {
	return fmt.Sprintf("[%d] %s: %s", e.Round, e.Kind, e.Narrative)
}

// EventSink receives encounter events in the order they happen.
type EventSink interface {
	Emit(e Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(e Event)

// Emit calls f(e).
func (f EventSinkFunc) Emit(e Event) { f(e) }

// Recorder is an EventSink that keeps every event in memory.
type Recorder struct {
	Events []Event
}

// Emit appends e.
func (r *Recorder) Emit(e Event) { r.Events = append(r.Events, e) }

// Kinds returns the kinds of every recorded event in order.
func (r *Recorder) Kinds() []EventKind {
	out := make([]EventKind, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Kind
	}
	return out
}

// Count returns how many recorded events have kind k.
func (r *Recorder) Count(k EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == k {
			n++
		}
	}
	return n
}
