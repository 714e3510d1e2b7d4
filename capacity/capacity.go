// Package capacity implements the unidirectional and bidirectional
// capacity-range arithmetic the rest of this module builds on: a
// Capacity is a [min, max] bandwidth range (max may be +Inf, meaning
// unbounded), and a BidiCapacity pairs an ingress/egress Capacity for
// a single edge.
//
// The arithmetic mirrors the teacher's flow package, which already
// treats capacities as non-negative float64 quantities combined with
// epsilon-tolerant comparisons (see flow.FlowOptions.Epsilon); this
// package generalizes that from scalar capacities to ranges.
package capacity

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// ErrNegativeMin indicates a Capacity was constructed with a negative minimum.
var ErrNegativeMin = errors.New("capacity: minimum must be non-negative")

// DefaultEpsilon is the tolerance this module's callers pass to
// EqualWithinAbs (which always takes an explicit tolerance), matching
// the teacher's flow.FlowOptions default
// of 1e-9 for "treat capacities <= Epsilon as zero/equal".
const DefaultEpsilon = 1e-9

// Capacity is a bandwidth range [Min, Max]. Max == math.Inf(1) denotes
// an unbounded upper limit.
type Capacity struct {
	Min float64
	Max float64
}

// Between constructs a Capacity from two bounds in either order,
// swapping them if max < min. It never fails: this is the normalizing
// constructor; use New when a negative minimum must be rejected.
func Between(a, b float64) Capacity {
	if b < a {
		a, b = b, a
	}
	return Capacity{Min: a, Max: b}
}

// New constructs a validated Capacity, failing per spec §4.A when
// min < 0.
func New(min, max float64) (Capacity, error) {
	c := Between(min, max)
	if c.Min < 0 {
		return Capacity{}, fmt.Errorf("%w: got %v", ErrNegativeMin, c.Min)
	}
	return c, nil
}

// At returns the exact capacity (v, v).
func At(v float64) Capacity { return Capacity{Min: v, Max: v} }

// From returns the unbounded-above capacity (v, +Inf).
func From(v float64) Capacity { return Capacity{Min: v, Max: math.Inf(1)} }

// Base returns (g, g+x), a base level g plus excess headroom x.
func Base(g, x float64) Capacity { return Between(g, g+x) }

// Excess returns Max - Min.
func (c Capacity) Excess() float64 { return c.Max - c.Min }

// Add returns the component-wise sum of a and b. The zero value of
// Capacity, {0,0}, is the additive identity: Add(a, Capacity{}) == a,
// including when a.Max is +Inf (inf + 0 == inf, no special-casing
// needed).
func Add(a, b Capacity) Capacity {
	return Capacity{Min: a.Min + b.Min, Max: a.Max + b.Max}
}

// Sum folds Add over cs, starting from the additive identity.
func Sum(cs ...Capacity) Capacity {
	var total Capacity
	for _, c := range cs {
		total = Add(total, c)
	}
	return total
}

// Min returns the component-wise minimum: min of the two Mins, min of
// the two Maxes. math.Min already treats +Inf as neutral (min(x, +Inf)
// == x for finite x), so no special-casing is required here.
func Min(a, b Capacity) Capacity {
	return Capacity{Min: math.Min(a.Min, b.Min), Max: math.Min(a.Max, b.Max)}
}

// Max returns the component-wise maximum of a and b.
func Max(a, b Capacity) Capacity {
	return Capacity{Min: math.Max(a.Min, b.Min), Max: math.Max(a.Max, b.Max)}
}

// EqualWithinAbs reports whether a and b are within tol of each other,
// used for epsilon-tolerant capacity and bias comparisons (spec §4.A,
// §4.D.4) instead of a hand-rolled math.Abs(a-b) < tol check.
func EqualWithinAbs(a, b, tol float64) bool {
	return scalar.EqualWithinAbs(a, b, tol)
}

// BidiCapacity pairs the ingress and egress Capacity of a single edge.
type BidiCapacity struct {
	Ingress Capacity
	Egress  Capacity
}

// Of returns a BidiCapacity using c for both ingress and egress.
func Of(c Capacity) BidiCapacity { return BidiCapacity{Ingress: c, Egress: c} }

// Invert swaps ingress and egress, used when an edge's traffic
// direction is reversed relative to how it was modeled.
func (b BidiCapacity) Invert() BidiCapacity {
	return BidiCapacity{Ingress: b.Egress, Egress: b.Ingress}
}

// AddBidi returns the component-wise sum of two BidiCapacity values.
func AddBidi(a, b BidiCapacity) BidiCapacity {
	return BidiCapacity{Ingress: Add(a.Ingress, b.Ingress), Egress: Add(a.Egress, b.Egress)}
}

// MinBidi returns the component-wise minimum of two BidiCapacity values.
func MinBidi(a, b BidiCapacity) BidiCapacity {
	return BidiCapacity{Ingress: Min(a.Ingress, b.Ingress), Egress: Min(a.Egress, b.Egress)}
}
