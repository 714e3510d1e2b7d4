// Package constraints compiles the per-vertex structural invariants
// (spec §4.E) that the mixed-radix iterator (radix package) validates
// incrementally: pairwise disjointness of incident edges' external
// goal-sets, and complete external coverage at every vertex. Each
// compiled constraint is attached to the base edge — the lowest-index
// edge it reads — so the iterator checks it exactly once that edge's
// digit is set, maximizing the benefit of prefix pruning.
package constraints

import (
	"sort"

	"github.com/arvodelta/meshplan/bitset"
	"github.com/arvodelta/meshplan/qedge"
	"github.com/arvodelta/meshplan/routing"
)

// Incidence describes one edge's relationship to the vertex it is
// being compiled for: whether traffic flows into the vertex along
// this edge (inward) and that edge's position in the iterator's digit
// order (spec §4.E "sorted by edge index").
type Incidence struct {
	Edge    *qedge.QualifiedEdge
	Index   int // digit position in the iterator's tuple
	Inward  bool
	Goal    int // bit position if this vertex is itself a goal, else -1
	IsGoal  bool
	Degree  int // goal-universe width, shared by every constraint
}

// external returns the goal-set an edge contributes to its vertex
// when its digit holds mode (0 == disused, else modes[mode-1]).
func external(inward bool, mode int, modes []bitset.Set, degree int) (bitset.Set, bool) {
	if mode == 0 {
		return bitset.Set{}, false
	}
	m := modes[mode-1]
	if inward {
		return m, true
	}
	return m.Complement(), true
}

// Constraint is a single compiled check, validated when the digit at
// BaseIndex is set (all digits at positions >= BaseIndex are defined
// by then, per the iterator's contract).
type Constraint struct {
	BaseIndex int
	check     func(digits []int) bool
}

// BaseEdge returns the digit position this constraint is attached to.
func (c *Constraint) BaseEdge() int { return c.BaseIndex }

// Check evaluates the constraint against a partially (or fully)
// defined digit tuple; digits below BaseIndex must not be read and
// are not read by any Constraint this package produces.
func (c *Constraint) Check(digits []int) bool { return c.check(digits) }

// Compile builds the constraints for a single vertex v given its
// incident edges; each Incidence carries the universe degree and
// whether v itself is a goal (and if so, its bit position).
//
// incidences may be given in any order: Compile sorts a copy by Index
// ascending, and for each incidence the ones at or above its Index
// form its "suffix" for the pairwise disjointness check (spec §4.E
// item 1).
func Compile(incidences []Incidence, res *routing.Result) []*Constraint {
	if len(incidences) == 0 {
		return nil
	}
	sorted := append([]Incidence(nil), incidences...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	modesOf := func(inc Incidence) []bitset.Set {
		ms := res.Modes[inc.Edge]
		if ms == nil {
			return nil
		}
		return ms.Modes
	}

	var out []*Constraint

	// Pairwise disjointness: for every suffix of length >= 2, anchored
	// at the lowest-index member of that suffix (its base edge, since
	// that is the last digit of the suffix to be set while descending
	// from the most significant digit).
	for start := 0; start < len(sorted)-1; start++ {
		suffix := sorted[start:]
		base := suffix[0].Index
		degree := suffix[0].Degree
		frozen := append([]Incidence(nil), suffix...)
		modeCache := make([][]bitset.Set, len(frozen))
		for i, inc := range frozen {
			modeCache[i] = modesOf(inc)
		}
		out = append(out, &Constraint{
			BaseIndex: base,
			check: func(digits []int) bool {
				var union bitset.Set
				first := true
				for i, inc := range frozen {
					mode := digits[inc.Index]
					ext, used := external(inc.Inward, mode, modeCache[i], degree)
					if !used {
						continue
					}
					if first {
						union = ext
						first = false
						continue
					}
					if !ext.Disjoint(union) {
						return false
					}
					union = union.Union(ext)
				}
				return true
			},
		})
	}

	// Complete external cover, attached to the lowest-index incident
	// edge (the last one set while descending): the union of all used
	// edges' external sets (plus {v} if v is a goal) must equal the
	// full goal set, or (for a non-goal vertex only) every edge may be
	// disused instead.
	base := sorted[0].Index
	degree := sorted[0].Degree
	isGoal := sorted[0].IsGoal
	goalBit := sorted[0].Goal
	all := append([]Incidence(nil), sorted...)
	modeCache := make([][]bitset.Set, len(all))
	for i, inc := range all {
		modeCache[i] = modesOf(inc)
	}
	out = append(out, &Constraint{
		BaseIndex: base,
		check: func(digits []int) bool {
			union := bitset.New(degree)
			anyUsed := false
			for i, inc := range all {
				mode := digits[inc.Index]
				ext, used := external(inc.Inward, mode, modeCache[i], degree)
				if !used {
					continue
				}
				anyUsed = true
				union = union.Union(ext)
			}
			if isGoal {
				union = union.With(goalBit)
				return anyUsed && union.IsFull()
			}
			if !anyUsed {
				return true
			}
			return union.IsFull()
		},
	})

	return out
}
