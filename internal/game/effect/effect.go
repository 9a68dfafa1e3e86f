// Package effect models timed status effects (buffs and damage-over-time)
// and the per-entity set that tracks their remaining durations.
package effect

import (
	"github.com/cory-johannsen/skirmish/internal/game/damage"
	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

// Phase is the point in a turn at which an effect's duration counts down.
type Phase int

const (
	// PhaseStartOfTurn effects tick (and decay) before their host acts.
	PhaseStartOfTurn Phase = iota + 1
	// PhaseEndOfTurn effects decay after their host has acted.
	PhaseEndOfTurn
)

// String returns a short label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStartOfTurn:
		return "start_of_turn"
	case PhaseEndOfTurn:
		return "end_of_turn"
	default:
		return "unknown"
	}
}

// Effect is a status effect attached to one entity. The concrete variant is
// fixed at construction; callers never inspect the dynamic type.
//
// An effect carries only its own data. It holds no reference to the entity it
// is attached to; the host passes its attribute bag in when needed.
type Effect interface {
	// Name identifies the effect within its host's Set.
	Name() string
	// Duration is the number of turns the effect lasts when first attached.
	Duration() int
	// Phase reports when the effect's duration counts down.
	Phase() Phase
	// Apply adds the effect's attribute changes to b. Called once on attach.
	Apply(b *stat.Bag)
	// Reverse removes exactly what Apply added. Called once on detach.
	Reverse(b *stat.Bag)
	// Tick returns the periodic damage and the level of its source.
	// ok is false for effects that deal no periodic damage.
	Tick() (d damage.Damage, sourceLevel int, ok bool)
}

// Buff modifies attributes for its duration.
type Buff struct {
	name     string
	duration int
	deltas   stat.Deltas
}

// NewBuff creates a Buff.
//
// Precondition: duration >= 1.
// Postcondition: the Buff does not alias deltas.
func NewBuff(name string, duration int, deltas stat.Deltas) *Buff {
	return &Buff{name: name, duration: duration, deltas: deltas.Clone()}
}

func (b *Buff) Name() string  { return b.name }
func (b *Buff) Duration() int { return b.duration }
func (b *Buff) Phase() Phase  { return PhaseEndOfTurn }

// Deltas returns a copy of the attribute changes this buff grants.
func (b *Buff) Deltas() stat.Deltas { return b.deltas.Clone() }

func (b *Buff) Apply(bag *stat.Bag)   { b.deltas.ApplyTo(bag) }
func (b *Buff) Reverse(bag *stat.Bag) { b.deltas.ReverseFrom(bag) }

func (b *Buff) Tick() (damage.Damage, int, bool) { return damage.Damage{}, 0, false }

// DoT deals damage at the start of each of its host's turns.
type DoT struct {
	name        string
	duration    int
	perTick     damage.Damage
	sourceLevel int
}

// NewDoT creates a damage-over-time effect whose damage is scaled as if dealt
// by an attacker of sourceLevel.
//
// Precondition: duration >= 1; sourceLevel >= 1.
func NewDoT(name string, duration int, perTick damage.Damage, sourceLevel int) *DoT {
	return &DoT{name: name, duration: duration, perTick: perTick, sourceLevel: sourceLevel}
}

func (d *DoT) Name() string  { return d.name }
func (d *DoT) Duration() int { return d.duration }
func (d *DoT) Phase() Phase  { return PhaseStartOfTurn }

// SourceLevel returns the level of the entity that applied this DoT.
func (d *DoT) SourceLevel() int { return d.sourceLevel }

func (d *DoT) Apply(*stat.Bag)   {}
func (d *DoT) Reverse(*stat.Bag) {}

func (d *DoT) Tick() (damage.Damage, int, bool) { return d.perTick, d.sourceLevel, true }
