package demand

import (
	"github.com/arvodelta/meshplan/bitset"
	"github.com/arvodelta/meshplan/capacity"
)

// Flat is a DemandFunction returning the same Capacity for every
// valid from-set. It is the simplest concrete variant and the one used
// in spec scenario S1/S2.
type Flat struct {
	degree int
	c      capacity.Capacity
}

// NewFlat constructs a Flat demand function of the given degree (must
// be >= 2, since a proper non-empty from-set requires at least one bit
// on each side) returning c for every from-set.
func NewFlat(degree int, c capacity.Capacity) (*Flat, error) {
	if degree < 2 {
		return nil, ErrInvalidDegree
	}
	return &Flat{degree: degree, c: c}, nil
}

// Degree returns the number of goals this function is defined over.
func (f *Flat) Degree() int { return f.degree }

// Get returns f.c for any valid from-set.
func (f *Flat) Get(s bitset.Set) (capacity.Capacity, error) {
	if err := validateSubset(s, f.degree); err != nil {
		return capacity.Capacity{}, err
	}
	return f.c, nil
}

// GetPair returns (f.c, f.c): flat demand is symmetric by construction.
func (f *Flat) GetPair(s bitset.Set) (capacity.BidiCapacity, error) {
	return pairFromGet(f, s)
}

// Reduce returns an equivalent constant function of the reduced
// degree: a constant function's value does not depend on how goals are
// grouped. The result is a Flat tabulated into a TableFn when the
// reduced degree is within DefaultTabulationThreshold; a single group
// yields a degree-1 function with no valid from-set.
func (f *Flat) Reduce(groups []bitset.Set) (DemandFunction, error) {
	if err := validatePartition(groups, f.degree); err != nil {
		return nil, err
	}
	if len(groups) < 2 {
		return &reducedFn{base: f, groups: groups, degree: len(groups)}, nil
	}
	reduced, err := NewFlat(len(groups), f.c)
	if err != nil {
		return nil, err
	}
	if reduced.degree <= DefaultTabulationThreshold {
		return reduced.Tabulate(), nil
	}
	return reduced, nil
}

// Map returns f unchanged: a constant function is invariant under
// relabeling of the goal index space. The identity permutation and
// every other permutation both yield the same observable behavior,
// so Map always returns the receiver.
func (f *Flat) Map(perm []int) (DemandFunction, error) {
	if err := validatePermutation(perm, f.degree); err != nil {
		return nil, err
	}
	return f, nil
}

// Tabulate materializes Flat as a Table when the degree is within
// DefaultTabulationThreshold; otherwise it returns f unchanged.
func (f *Flat) Tabulate() DemandFunction {
	return TabulateWithThreshold(f, DefaultTabulationThreshold)
}
