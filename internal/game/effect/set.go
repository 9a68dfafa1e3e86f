package effect

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotActive is returned when removing an effect that is not attached.
// It signals a turn-ordering bug in the caller.
var ErrNotActive = errors.New("effect not active")

// Active tracks one attached effect and its remaining turns.
type Active struct {
	Effect    Effect
	Remaining int
}

// Set holds every effect attached to one entity, keyed by effect name.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	active map[string]*Active
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{active: make(map[string]*Active)}
}

// Add attaches e with its configured duration. If an effect with the same
// name is already attached, its remaining duration is extended to
// max(remaining, e.Duration()) and the existing effect is kept; refreshed
// reports that case so the caller does not apply attribute changes twice.
//
// Precondition: e must not be nil; e.Duration() >= 1.
// Postcondition: Has(e.Name()) is true.
func (s *Set) Add(e Effect) (refreshed bool, err error) {
	if e == nil {
		return false, errors.New("Add: effect must not be nil")
	}
	if e.Duration() < 1 {
		return false, fmt.Errorf("Add: effect %q has duration %d, must be >= 1", e.Name(), e.Duration())
	}
	if existing, ok := s.active[e.Name()]; ok {
		if e.Duration() > existing.Remaining {
			existing.Remaining = e.Duration()
		}
		return true, nil
	}
	s.active[e.Name()] = &Active{Effect: e, Remaining: e.Duration()}
	return false, nil
}

// Remove detaches the named effect and returns it.
//
// Postcondition: Has(name) is false; returns ErrNotActive if it was not attached.
func (s *Set) Remove(name string) (Effect, error) {
	a, ok := s.active[name]
	if !ok {
		return nil, fmt.Errorf("removing %q: %w", name, ErrNotActive)
	}
	delete(s.active, name)
	return a.Effect, nil
}

// Has reports whether the named effect is attached.
func (s *Set) Has(name string) bool {
	_, ok := s.active[name]
	return ok
}

// Remaining returns the turns left on the named effect, or 0 if absent.
func (s *Set) Remaining(name string) int {
	if a, ok := s.active[name]; ok {
		return a.Remaining
	}
	return 0
}

// Len returns the number of attached effects.
func (s *Set) Len() int { return len(s.active) }

// All returns the attached effects ordered by name.
// The returned Active values are shared; callers must not modify them.
func (s *Set) All() []*Active {
	out := make([]*Active, 0, len(s.active))
	for _, a := range s.active {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Effect.Name() < out[j].Effect.Name() })
	return out
}

// InPhase returns the attached effects that count down in phase p, ordered by name.
func (s *Set) InPhase(p Phase) []*Active {
	var out []*Active
	for _, a := range s.All() {
		if a.Effect.Phase() == p {
			out = append(out, a)
		}
	}
	return out
}

// Advance decrements once every effect counting down in phase p. Effects that
// reach zero are detached and returned ordered by name; the caller is
// responsible for reversing them.
//
// Postcondition: every returned effect has Has(name) == false; no effect in
// another phase is touched.
func (s *Set) Advance(p Phase) []Effect {
	var expired []Effect
	for _, a := range s.InPhase(p) {
		a.Remaining--
		if a.Remaining <= 0 {
			expired = append(expired, a.Effect)
			delete(s.active, a.Effect.Name())
		}
	}
	return expired
}
