// Package item defines weapons, wearable equipment and carried goods, and the
// inventory a character keeps them in.
package item

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/stat"
)

// Kind constants for Def.Kind.
const (
	KindWeapon     = "weapon"
	KindEquipment  = "equipment"
	KindConsumable = "consumable"
	KindJunk       = "junk"
)

var validKinds = map[string]bool{
	KindWeapon:     true,
	KindEquipment:  true,
	KindConsumable: true,
	KindJunk:       true,
}

// Slot identifies a wearable equipment slot. Weapons are held separately.
type Slot string

const (
	SlotHead     Slot = "head"
	SlotShoulder Slot = "shoulder"
	SlotChest    Slot = "chest"
	SlotHands    Slot = "hands"
	SlotLegs     Slot = "legs"
	SlotFeet     Slot = "feet"
	SlotNeck     Slot = "neck"
	SlotRing     Slot = "ring"
)

var slotDisplayNames = map[Slot]string{
	SlotHead:     "Head",
	SlotShoulder: "Shoulder",
	SlotChest:    "Chest",
	SlotHands:    "Hands",
	SlotLegs:     "Legs",
	SlotFeet:     "Feet",
	SlotNeck:     "Neck",
	SlotRing:     "Ring",
}

// Slots returns every equipment slot in a stable order.
func Slots() []Slot {
	out := make([]Slot, 0, len(slotDisplayNames))
	for s := range slotDisplayNames {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DisplayName returns the human-readable label for s, or s itself if unknown.
func (s Slot) DisplayName() string {
	if label, ok := slotDisplayNames[s]; ok {
		return label
	}
	return string(s)
}

// Def defines the static properties of an item loaded from YAML.
type Def struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Kind        string             `yaml:"kind"`
	Slot        Slot               `yaml:"slot"`
	MinDamage   float64            `yaml:"min_damage"`
	MaxDamage   float64            `yaml:"max_damage"`
	Attributes  map[string]float64 `yaml:"attributes"`
	Stackable   bool               `yaml:"stackable"`
	MaxStack    int                `yaml:"max_stack"`
	Value       int                `yaml:"value"`
}

// Validate checks that the Def satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("kind must be one of weapon, equipment, consumable, junk; got %q", d.Kind))
	}
	if d.MaxStack < 1 {
		errs = append(errs, errors.New("max_stack must be >= 1"))
	}
	if d.Value < 0 {
		errs = append(errs, errors.New("value must be >= 0"))
	}
	if d.Kind == KindWeapon {
		if d.MinDamage < 0 || d.MaxDamage < d.MinDamage {
			errs = append(errs, fmt.Errorf("weapon damage range [%g, %g] is invalid", d.MinDamage, d.MaxDamage))
		}
	}
	if d.Kind == KindEquipment {
		if _, ok := slotDisplayNames[d.Slot]; !ok {
			errs = append(errs, fmt.Errorf("equipment slot %q is unknown", d.Slot))
		}
	}
	if _, err := d.deltas(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

func (d *Def) deltas() (stat.Deltas, error) {
	out := make(stat.Deltas, len(d.Attributes))
	for name, v := range d.Attributes {
		k, err := stat.ParseKey(name)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Deltas returns the attribute changes granted while the item is worn or wielded.
//
// Precondition: d passed Validate.
func (d *Def) Deltas() stat.Deltas {
	out, _ := d.deltas()
	return out
}

// Wearable reports whether the item can be equipped in a slot or wielded.
func (d *Def) Wearable() bool {
	return d.Kind == KindWeapon || d.Kind == KindEquipment
}

// Fists is the weapon every character wields when nothing is equipped.
func Fists() *Def {
	return &Def{ID: "fists", Name: "Fists", Kind: KindWeapon, MinDamage: 0, MaxDamage: 1, MaxStack: 1}
}
