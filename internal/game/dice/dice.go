// Package dice provides the randomness abstraction used by combat rolls,
// loot rolls and spell critical checks.
package dice

import "fmt"

// Source is the randomness provider for all rolls.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// RangeResult records one uniform roll between two inclusive bounds.
//
// Postcondition: Min <= Value <= Max.
type RangeResult struct {
	Label string
	Min   int
	Max   int
	Value int
}

// String returns an audit string such as "swing [5..10] = 8".
func (r RangeResult) String() string {
	return fmt.Sprintf("%s [%d..%d] = %d", r.Label, r.Min, r.Max, r.Value)
}

// Range rolls uniformly in [lo, hi] using src. Bounds given in the wrong order
// are swapped.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a value in [min(lo,hi), max(lo,hi)].
func Range(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Chance returns true with probability percent/100.
//
// Postcondition: percent <= 0 always returns false; percent >= 100 always returns true.
func Chance(src Source, percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return src.Intn(100) < percent
}
