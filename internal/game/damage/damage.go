// Package damage defines the composite physical/magical damage value carried
// through every combat calculation.
package damage

import (
	"fmt"
	"math"
)

// Damage is a hit split into a physical and a magical component.
// Values are immutable by convention: every operation returns a new Damage.
//
// Invariant: Physical >= 0 and Magical >= 0 for any value produced by this package.
type Damage struct {
	Physical float64
	Magical  float64
}

// New returns a Damage with both components floored at zero.
func New(physical, magical float64) Damage {
	return Damage{Physical: floor(physical), Magical: floor(magical)}
}

// Physical returns a purely physical Damage.
func Physical(amount float64) Damage { return New(amount, 0) }

// Magical returns a purely magical Damage.
func Magical(amount float64) Damage { return New(0, amount) }

// Total returns the sum of both components.
func (d Damage) Total() float64 { return d.Physical + d.Magical }

// IsZero reports whether the damage carries nothing in either component.
func (d Damage) IsZero() bool { return d.Physical == 0 && d.Magical == 0 }

// Add returns the component-wise sum of d and o.
func (d Damage) Add(o Damage) Damage {
	return New(d.Physical+o.Physical, d.Magical+o.Magical)
}

// Sub returns the component-wise difference of d and o.
//
// Postcondition: neither component of the result is negative.
func (d Damage) Sub(o Damage) Damage {
	return New(d.Physical-o.Physical, d.Magical-o.Magical)
}

// Scale multiplies both components by factor.
//
// Postcondition: a negative factor yields zero damage.
func (d Damage) Scale(factor float64) Damage {
	return New(d.Physical*factor, d.Magical*factor)
}

// Absorb removes up to capacity from the damage, draining the physical
// component first and the magical component second. It returns the reduced
// damage and the capacity left over.
//
// Precondition: capacity >= 0 (negative capacity is treated as zero).
// Postcondition: reduced.Total() + (capacity - leftover) == d.Total() when capacity >= 0.
func (d Damage) Absorb(capacity float64) (reduced Damage, leftover float64) {
	if capacity <= 0 {
		return d, 0
	}
	phys := math.Min(d.Physical, capacity)
	capacity -= phys
	magic := math.Min(d.Magical, capacity)
	capacity -= magic
	return New(d.Physical-phys, d.Magical-magic), capacity
}

// String formats the damage to two decimals, e.g. "8.00 (6.00 phys, 2.00 magic)".
func (d Damage) String() string {
	if d.Magical == 0 {
		return fmt.Sprintf("%.2f", d.Physical)
	}
	if d.Physical == 0 {
		return fmt.Sprintf("%.2f magic", d.Magical)
	}
	return fmt.Sprintf("%.2f (%.2f phys, %.2f magic)", d.Total(), d.Physical, d.Magical)
}

// RoundHit rounds an amount to hundredths. Fractional damage is carried
// unrounded through scaling, mitigation and absorption and rounded only when
// it is finally subtracted from health.
func RoundHit(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func floor(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
