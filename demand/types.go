// Package demand implements the bandwidth-demand algebra: the
// DemandFunction contract (get, getPair, reduce, map, tabulate) and its
// four concrete variants (Flat, Pair, Matrix, Table).
//
// A DemandFunction of degree n reports the bandwidth a hypothetical
// spanning-tree edge must carry as a function of which goals (indexed
// 0..n-1) lie on the "from" side of the edge. Every implementation here
// is pure, deterministic, and safe to share across goroutines — no
// implementation holds mutable state after construction, mirroring how
// the teacher's core.Graph documents its own thread-safety guarantees
// (distinct locks for distinct concerns) even though here there is
// simply nothing to lock.
package demand

import (
	"errors"
	"fmt"

	"github.com/arvodelta/meshplan/bitset"
	"github.com/arvodelta/meshplan/capacity"
)

// Sentinel errors for demand function operations (spec §7).
var (
	// ErrInvalidSubset indicates an empty or full from-set argument to
	// Get/GetPair, or a raw mask with bits >= degree passed to MaskSet.
	// A from-set of the wrong width is reported as ErrInvalidDegree.
	ErrInvalidSubset = errors.New("demand: invalid subset")

	// ErrInvalidDegree indicates a mismatched size in a Map/Reduce input.
	ErrInvalidDegree = errors.New("demand: invalid degree")

	// ErrInvalidPartition indicates Reduce's groups are not pairwise
	// disjoint or do not cover the base function's full universe.
	ErrInvalidPartition = errors.New("demand: invalid partition")

	// ErrInvalidPermutation indicates Map's perm argument is not a
	// bijection of [0, degree).
	ErrInvalidPermutation = errors.New("demand: invalid permutation")
)

// DefaultTabulationThreshold is the degree at or below which Tabulate
// materializes a lookup table by default (2^8-2 = 254 entries is
// negligible, per the spec's design notes). Use TabulateWithThreshold
// to override this per call without introducing global mutable state.
const DefaultTabulationThreshold = 8

// DemandFunction is the capability contract every variant implements.
// All methods are pure, idempotent, and thread-safe.
type DemandFunction interface {
	// Degree returns n, the number of goals this function is defined over.
	Degree() int

	// Get returns the demand for from-set s. s must have Len() ==
	// Degree(), be non-empty, and not cover the full universe.
	Get(s bitset.Set) (capacity.Capacity, error)

	// GetPair returns (Get(s), Get(complement of s)).
	GetPair(s bitset.Set) (capacity.BidiCapacity, error)

	// Reduce builds a lower-degree function over a partition of this
	// function's universe: reduced.Get(T) == Get(union of groups in T).
	Reduce(groups []bitset.Set) (DemandFunction, error)

	// Map builds a function over a permuted index space:
	// mapped.Get(S) == Get({perm[i] : i in S}).
	Map(perm []int) (DemandFunction, error)

	// Tabulate returns an equivalent, possibly table-backed function.
	Tabulate() DemandFunction
}

// MaskSet builds a bitset.Set of the given degree from a raw bitmask,
// the convenience entry point for callers holding plain integer masks
// (mirrors the source representation's bitmask-indexed contract). Bits
// at position >= degree set in mask are rejected with ErrInvalidSubset,
// covering the "S contains bits >= degree" failure case explicitly.
func MaskSet(degree int, mask uint64) (bitset.Set, error) {
	if degree < 0 || degree > 64 {
		return bitset.Set{}, fmt.Errorf("%w: MaskSet supports degree in [0,64], got %d", ErrInvalidDegree, degree)
	}
	if degree < 64 && mask>>uint(degree) != 0 {
		return bitset.Set{}, fmt.Errorf("%w: mask has bits >= degree %d", ErrInvalidSubset, degree)
	}
	return bitset.FromMask64(degree, mask), nil
}

// validateSubset enforces the domain law shared by every Get
// implementation: s must match degree in width, and be neither empty
// nor the full universe (spec §3 DemandFunction "Domain").
func validateSubset(s bitset.Set, degree int) error {
	if s.Len() != degree {
		return fmt.Errorf("%w: subset width %d != degree %d", ErrInvalidDegree, s.Len(), degree)
	}
	if s.IsEmpty() {
		return fmt.Errorf("%w: from-set is empty", ErrInvalidSubset)
	}
	if s.IsFull() {
		return fmt.Errorf("%w: from-set covers the full universe", ErrInvalidSubset)
	}
	return nil
}

// pairFromGet is the shared GetPair implementation every variant below
// calls: getPair(S) = (get(S), get(not S)). Variants with a cheaper
// direct computation (Pair, Matrix) still route through their own Get
// for both calls so the "Pair symmetry" law (spec §8 item 2) holds by
// construction rather than by coincidence.
func pairFromGet(df DemandFunction, s bitset.Set) (capacity.BidiCapacity, error) {
	up, err := df.Get(s)
	if err != nil {
		return capacity.BidiCapacity{}, err
	}
	dn, err := df.Get(s.Complement())
	if err != nil {
		return capacity.BidiCapacity{}, err
	}
	return capacity.BidiCapacity{Ingress: up, Egress: dn}, nil
}

// validatePartition checks that groups is a partition of [0, degree):
// pairwise disjoint, each non-empty, union covers every bit.
func validatePartition(groups []bitset.Set, degree int) error {
	if len(groups) == 0 {
		return fmt.Errorf("%w: no groups provided", ErrInvalidPartition)
	}
	union := bitset.New(degree)
	for gi, g := range groups {
		if g.Len() != degree {
			return fmt.Errorf("%w: group %d width %d != degree %d", ErrInvalidDegree, gi, g.Len(), degree)
		}
		if g.IsEmpty() {
			return fmt.Errorf("%w: group %d is empty", ErrInvalidPartition, gi)
		}
		if !g.Disjoint(union) {
			return fmt.Errorf("%w: group %d overlaps a prior group", ErrInvalidPartition, gi)
		}
		union = union.Union(g)
	}
	if !union.IsFull() {
		return fmt.Errorf("%w: groups do not cover the full universe", ErrInvalidPartition)
	}
	return nil
}

// validatePermutation checks that perm is a bijection of [0, degree).
func validatePermutation(perm []int, degree int) error {
	if len(perm) != degree {
		return fmt.Errorf("%w: permutation length %d != degree %d", ErrInvalidDegree, len(perm), degree)
	}
	seen := make([]bool, degree)
	for _, p := range perm {
		if p < 0 || p >= degree {
			return fmt.Errorf("%w: permutation entry %d out of range [0,%d)", ErrInvalidPermutation, p, degree)
		}
		if seen[p] {
			return fmt.Errorf("%w: permutation entry %d repeated", ErrInvalidPermutation, p)
		}
		seen[p] = true
	}
	return nil
}

// isIdentity reports whether perm is the identity permutation.
func isIdentity(perm []int) bool {
	for i, p := range perm {
		if p != i {
			return false
		}
	}
	return true
}

// mapSubset computes {perm[i] : i in s} as a bitset.Set of the same width.
func mapSubset(perm []int, s bitset.Set) bitset.Set {
	out := bitset.New(s.Len())
	for _, i := range s.Bits() {
		out = out.With(perm[i])
	}
	return out
}

// unionGroups computes the union of groups[i] for i in t.Bits(), each
// group defined over baseDegree.
func unionGroups(groups []bitset.Set, baseDegree int, t bitset.Set) bitset.Set {
	out := bitset.New(baseDegree)
	for _, i := range t.Bits() {
		out = out.Union(groups[i])
	}
	return out
}
