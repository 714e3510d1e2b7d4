package routing

import (
	"github.com/arvodelta/meshplan/bitset"
	"github.com/arvodelta/meshplan/capacity"
	"github.com/arvodelta/meshplan/demand"
	"github.com/arvodelta/meshplan/qedge"
)

// ModeSet holds, for a single edge, the non-zero from-side bitmasks
// ("modes") that remain feasible. A missing or empty ModeSet means the
// edge is disused in every surviving configuration.
type ModeSet struct {
	Modes []bitset.Set
}

// hasBit reports whether any mode in ms has bit set to want.
func (ms *ModeSet) hasBit(bit int, want bool) bool {
	if ms == nil {
		return false
	}
	for _, m := range ms.Modes {
		if m.Test(bit) == want {
			return true
		}
	}
	return false
}

func (ms *ModeSet) empty() bool {
	return ms == nil || len(ms.Modes) == 0
}

// PruneByCapacity computes the initial feasible ModeSet for every edge
// (spec §4.D.1): a non-zero mode s is feasible for edge e only if e's
// ingress/egress minimums cover the demand the cut {s, not s} requires,
// and if either endpoint is itself a goal, its membership in s is fixed
// (a goal is always on its own send side at the edge touching it:
// present at the Start side, absent at the Finish side).
//
// goalIndex must map every goal vertex to its bit position in the
// demand function's universe (spec §3's Bit positions field).
func PruneByCapacity(
	goals []qedge.Vertex,
	goalIndex map[qedge.Vertex]int,
	df demand.DemandFunction,
	edges []*qedge.QualifiedEdge,
) (map[*qedge.QualifiedEdge]*ModeSet, error) {
	n := df.Degree()
	if n != len(goals) {
		return nil, ErrInvalidDegree(n, len(goals))
	}

	result := make(map[*qedge.QualifiedEdge]*ModeSet, len(edges))
	for _, e := range edges {
		result[e] = &ModeSet{}
	}

	top := (1 << uint(n)) - 1
	for mask := 1; mask < top; mask++ {
		s := bitset.FromMask64(n, uint64(mask))
		req, err := df.GetPair(s)
		if err != nil {
			return nil, err
		}

		for _, e := range edges {
			if req.Ingress.Min > e.Capacity.Ingress.Min &&
				!capacity.EqualWithinAbs(req.Ingress.Min, e.Capacity.Ingress.Min, capacity.DefaultEpsilon) {
				continue
			}
			if req.Egress.Min > e.Capacity.Egress.Min &&
				!capacity.EqualWithinAbs(req.Egress.Min, e.Capacity.Egress.Min, capacity.DefaultEpsilon) {
				continue
			}
			if gi, ok := goalIndex[e.Start]; ok && !s.Test(gi) {
				continue
			}
			if gi, ok := goalIndex[e.Finish]; ok && s.Test(gi) {
				continue
			}
			ms := result[e]
			ms.Modes = append(ms.Modes, s)
		}
	}

	return result, nil
}
