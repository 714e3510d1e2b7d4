package demand

import (
	"github.com/arvodelta/meshplan/bitset"
	"github.com/arvodelta/meshplan/capacity"
)

// PairFn is a DemandFunction defined by a per-goal ingress/egress
// Capacity: get(S) = min(sum of ingress_i for i in S, sum of egress_i
// for i not in S), following the two-running-sums algorithm of spec
// §4.B. This is the variant used in scenario S3/S4.
type PairFn struct {
	ingress []capacity.Capacity
	egress  []capacity.Capacity
}

// NewPair constructs a PairFn from parallel ingress/egress slices,
// one entry per goal. Both slices must have equal length >= 2.
func NewPair(ingress, egress []capacity.Capacity) (*PairFn, error) {
	if len(ingress) != len(egress) {
		return nil, ErrInvalidDegree
	}
	if len(ingress) < 2 {
		return nil, ErrInvalidDegree
	}
	in := make([]capacity.Capacity, len(ingress))
	eg := make([]capacity.Capacity, len(egress))
	copy(in, ingress)
	copy(eg, egress)
	return &PairFn{ingress: in, egress: eg}, nil
}

// Degree returns the number of goals (len of the ingress/egress slices).
func (p *PairFn) Degree() int { return len(p.ingress) }

// Get computes min(up, dn) where up sums ingress over s's members and
// dn sums egress over s's complement's members.
func (p *PairFn) Get(s bitset.Set) (capacity.Capacity, error) {
	if err := validateSubset(s, p.Degree()); err != nil {
		return capacity.Capacity{}, err
	}

	var up capacity.Capacity
	for _, i := range s.Bits() {
		up = capacity.Add(up, p.ingress[i])
	}

	var dn capacity.Capacity
	for _, i := range s.Complement().Bits() {
		dn = capacity.Add(dn, p.egress[i])
	}

	return capacity.Min(up, dn), nil
}

// GetPair returns (Get(s), Get(not s)).
func (p *PairFn) GetPair(s bitset.Set) (capacity.BidiCapacity, error) {
	return pairFromGet(p, s)
}

// Reduce groups per-goal ingress/egress by summing within each group
// (a group's aggregate ingress/egress is the sum over its members),
// then builds a new PairFn of the reduced degree, tabulated into a
// TableFn when that degree is within DefaultTabulationThreshold. A
// single group yields a degree-1 function with no valid from-set.
func (p *PairFn) Reduce(groups []bitset.Set) (DemandFunction, error) {
	if err := validatePartition(groups, p.Degree()); err != nil {
		return nil, err
	}
	if len(groups) < 2 {
		return &reducedFn{base: p, groups: groups, degree: len(groups)}, nil
	}

	in := make([]capacity.Capacity, len(groups))
	eg := make([]capacity.Capacity, len(groups))
	for gi, g := range groups {
		var sumIn, sumEg capacity.Capacity
		for _, i := range g.Bits() {
			sumIn = capacity.Add(sumIn, p.ingress[i])
			sumEg = capacity.Add(sumEg, p.egress[i])
		}
		in[gi] = sumIn
		eg[gi] = sumEg
	}

	reduced, err := NewPair(in, eg)
	if err != nil {
		return nil, err
	}
	if reduced.Degree() <= DefaultTabulationThreshold {
		return reduced.Tabulate(), nil
	}
	return reduced, nil
}

// Map permutes the per-goal ingress/egress slices according to perm:
// mapped.Get(S) == base.Get({perm[i] : i in S}), so mapped goal i carries
// original goal perm[i]'s ingress/egress.
func (p *PairFn) Map(perm []int) (DemandFunction, error) {
	if err := validatePermutation(perm, p.Degree()); err != nil {
		return nil, err
	}
	if isIdentity(perm) {
		return p, nil
	}

	in := make([]capacity.Capacity, p.Degree())
	eg := make([]capacity.Capacity, p.Degree())
	for i, pi := range perm {
		in[i] = p.ingress[pi]
		eg[i] = p.egress[pi]
	}
	return NewPair(in, eg)
}

// Tabulate materializes PairFn as a Table when the degree is within
// DefaultTabulationThreshold; otherwise it returns p unchanged.
func (p *PairFn) Tabulate() DemandFunction {
	return TabulateWithThreshold(p, DefaultTabulationThreshold)
}
