package console

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

var kindColors = map[combat.EventKind]string{
	combat.EventEngage:          BrightYellow,
	combat.EventAttack:          White,
	combat.EventTick:            Magenta,
	combat.EventEffectApplied:   Magenta,
	combat.EventEffectRefreshed: Magenta,
	combat.EventEffectExpired:   Dim,
	combat.EventCast:            Cyan,
	combat.EventCastRefused:     Yellow,
	combat.EventStats:           Blue,
	combat.EventUnknownCommand:  Yellow,
	combat.EventDeath:           BrightRed,
	combat.EventFled:            Yellow,
	combat.EventGold:            BrightYellow,
	combat.EventLoot:            Green,
	combat.EventLootLost:        Red,
	combat.EventQuestCompleted:  BrightGreen,
	combat.EventExperience:      Green,
	combat.EventLevelUp:         Bold + BrightGreen,
	combat.EventAnnouncement:    Bold + Magenta,
	combat.EventRevived:         BrightGreen,
	combat.EventRevivalDeclined: Dim,
}

// Renderer is a combat.EventSink that prints each event's narrative.
type Renderer struct {
	out *Console
}

// NewRenderer creates a Renderer writing through out.
func NewRenderer(out *Console) *Renderer {
	return &Renderer{out: out}
}

// Emit prints e on its own line.
func (r *Renderer) Emit(e combat.Event) {
	if e.Narrative == "" {
		return
	}
	color, ok := kindColors[e.Kind]
	if !ok {
		color = White
	}
	r.out.Printf("%s\n", r.out.Paint(color, e.Narrative))
}
