package routing

import (
	"github.com/arvodelta/meshplan/capacity"
	"github.com/arvodelta/meshplan/demand"
	"github.com/arvodelta/meshplan/qedge"
)

// Result is the outcome of Run: the surviving ModeSet per edge and the
// edges in their original input order (the order radices are reported
// in, and the order the planner assigns stable positions from).
type Result struct {
	Modes map[*qedge.QualifiedEdge]*ModeSet
	Edges []*qedge.QualifiedEdge
}

// Run executes the full mode-pruning and routing stage (spec §4.D):
// capacity pruning, leaf stripping, then repeated rounds of
// goal-reachability distance computation and bias-based elimination
// until a fixpoint, optionally repeated at tighter thresholds per
// opts.Assessor, and finally a topology check that every goal still
// has a surviving edge.
func Run(
	goals []qedge.Vertex,
	df demand.DemandFunction,
	edges []*qedge.QualifiedEdge,
	opts ...Option,
) (*Result, error) {
	if len(goals) < 2 {
		return nil, ErrNoGoals
	}
	if err := CheckConnectivity(goals, edges); err != nil {
		return nil, err
	}

	cfg := DefaultOptions()
	for _, o := range opts {
		o(&cfg)
	}

	goalIndex := make(map[qedge.Vertex]int, len(goals))
	goalSet := make(map[qedge.Vertex]bool, len(goals))
	for i, g := range goals {
		goalIndex[g] = i
		goalSet[g] = true
	}

	modes, err := PruneByCapacity(goals, goalIndex, df, edges)
	if err != nil {
		return nil, err
	}

	stripLeaves(goalSet, edges, modes)

	threshold := cfg.InitialThreshold
	for {
		eliminateFixpoint(goals, goalIndex, edges, modes, threshold)
		stripLeaves(goalSet, edges, modes)

		radices := radicesOf(edges, modes)
		next := cfg.Assessor.Assess(threshold, radices)
		if next < 0 || next >= threshold {
			break
		}
		threshold = next
	}

	if err := FinalizeTopology(goals, edges, modes); err != nil {
		return nil, err
	}

	return &Result{Modes: modes, Edges: edges}, nil
}

// eliminateFixpoint repeatedly recomputes per-goal distances and
// strips modes whose bias exceeds threshold in magnitude (spec
// §4.D.4) until a full pass removes nothing.
func eliminateFixpoint(
	goals []qedge.Vertex,
	goalIndex map[qedge.Vertex]int,
	edges []*qedge.QualifiedEdge,
	modes map[*qedge.QualifiedEdge]*ModeSet,
	threshold float64,
) {
	for {
		dist := make([]map[qedge.Vertex]float64, len(goals))
		for gi, g := range goals {
			dist[gi] = distancesToGoal(g, gi, edges, modes)
		}

		changed := false
		for _, e := range edges {
			ms := modes[e]
			if ms.empty() {
				continue
			}

			for gi := range goals {
				dStart, okStart := distanceOf(dist[gi], e.Start)
				dFinish, okFinish := distanceOf(dist[gi], e.Finish)
				if !okStart || !okFinish {
					ms.Modes = nil
					changed = true
					break
				}
				if e.Cost == 0 {
					continue
				}

				bias := (dStart - dFinish) / e.Cost
				switch {
				case bias > threshold && !capacity.EqualWithinAbs(bias, threshold, capacity.DefaultEpsilon):
					if stripBit(ms, gi, true) {
						changed = true
					}
				case bias < -threshold && !capacity.EqualWithinAbs(bias, -threshold, capacity.DefaultEpsilon):
					if stripBit(ms, gi, false) {
						changed = true
					}
				}
			}
		}

		if !changed {
			return
		}
	}
}

// stripBit removes from ms every mode whose bit gi equals want,
// reporting whether any mode was actually removed.
func stripBit(ms *ModeSet, gi int, want bool) bool {
	kept := ms.Modes[:0]
	removed := false
	for _, m := range ms.Modes {
		if m.Test(gi) == want {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	ms.Modes = kept
	return removed
}

// Distances recomputes the final dist[v][g] table for every goal,
// given a finalized (or in-progress) ModeSet. Exported for the
// planner, which uses it to order edges by closeness to the nearest
// goal (spec §4.E: "edges closer to goals have higher indices").
func Distances(goals []qedge.Vertex, edges []*qedge.QualifiedEdge, modes map[*qedge.QualifiedEdge]*ModeSet) []map[qedge.Vertex]float64 {
	dist := make([]map[qedge.Vertex]float64, len(goals))
	for gi, g := range goals {
		dist[gi] = distancesToGoal(g, gi, edges, modes)
	}
	return dist
}

func radicesOf(edges []*qedge.QualifiedEdge, modes map[*qedge.QualifiedEdge]*ModeSet) []int {
	radices := make([]int, len(edges))
	for i, e := range edges {
		radices[i] = len(modes[e].Modes) + 1
	}
	return radices
}
