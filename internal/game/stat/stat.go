// Package stat defines entity attribute keys, the per-entity attribute bag,
// and reversible attribute deltas contributed by equipment, buffs and level growth.
package stat

import (
	"fmt"
	"sort"
)

// Key names one attribute in a Bag.
type Key string

const (
	Armor       Key = "armor"
	Strength    Key = "strength"
	Agility     Key = "agility"
	BonusHealth Key = "bonus_health"
	BonusMana   Key = "bonus_mana"
)

// validKeys is the closed set of attribute keys content files may reference.
var validKeys = map[Key]bool{
	Armor:       true,
	Strength:    true,
	Agility:     true,
	BonusHealth: true,
	BonusMana:   true,
}

// Keys returns every known attribute key in sorted order.
func Keys() []Key {
	out := make([]Key, 0, len(validKeys))
	for k := range validKeys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseKey validates s as an attribute key.
//
// Postcondition: Returns the Key, or an error naming the unknown attribute.
func ParseKey(s string) (Key, error) {
	k := Key(s)
	if !validKeys[k] {
		return "", fmt.Errorf("unknown attribute %q", s)
	}
	return k, nil
}

// Bag maps attribute keys to their raw (non-derived) values.
// A Bag is owned by exactly one entity; it is not safe for concurrent use.
type Bag struct {
	values map[Key]float64
}

// NewBag creates a Bag seeded with initial values.
//
// Postcondition: the Bag does not alias initial.
func NewBag(initial map[Key]float64) *Bag {
	b := &Bag{values: make(map[Key]float64, len(validKeys))}
	for k, v := range initial {
		b.values[k] = v
	}
	return b
}

// Get returns the value for k, or 0 if unset.
func (b *Bag) Get(k Key) float64 { return b.values[k] }

// Set overwrites the value for k.
func (b *Bag) Set(k Key, v float64) { b.values[k] = v }

// Add adds delta to the value for k.
func (b *Bag) Add(k Key, delta float64) { b.values[k] += delta }

// Snapshot returns a copy of the bag's contents.
func (b *Bag) Snapshot() map[Key]float64 {
	out := make(map[Key]float64, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Deltas is a reversible set of attribute changes.
type Deltas map[Key]float64

// Validate checks that every key in d is a known attribute.
func (d Deltas) Validate() error {
	for k := range d {
		if !validKeys[k] {
			return fmt.Errorf("unknown attribute %q", k)
		}
	}
	return nil
}

// ApplyTo adds every delta to b.
func (d Deltas) ApplyTo(b *Bag) {
	for k, v := range d {
		b.Add(k, v)
	}
}

// ReverseFrom subtracts every delta from b. ApplyTo followed by ReverseFrom
// leaves b unchanged.
func (d Deltas) ReverseFrom(b *Bag) {
	for k, v := range d {
		b.Add(k, -v)
	}
}

// Clone returns an independent copy of d.
func (d Deltas) Clone() Deltas {
	out := make(Deltas, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
