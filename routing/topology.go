package routing

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/arvodelta/meshplan/qedge"
)

// CheckConnectivity fails fast (spec §4.D.2 precondition) if the raw
// edge set, ignoring mode feasibility entirely, does not place every
// goal in one connected component. This mirrors the gonum-backed
// connectivity pass the analysis package in the retrieved beadwork
// example runs before its more expensive centrality computations.
func CheckConnectivity(goals []qedge.Vertex, edges []*qedge.QualifiedEdge) error {
	g := simple.NewUndirectedGraph()
	ids := make(map[qedge.Vertex]int64)
	idOf := func(v qedge.Vertex) int64 {
		if id, ok := ids[v]; ok {
			return id
		}
		id := int64(len(ids))
		ids[v] = id
		g.AddNode(simple.Node(id))
		return id
	}

	for _, e := range edges {
		u, w := idOf(e.Start), idOf(e.Finish)
		if u == w {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(w)})
	}

	components := topo.ConnectedComponents(g)
	owner := make(map[int64]int, len(ids))
	for ci, comp := range components {
		for _, node := range comp {
			owner[node.ID()] = ci
		}
	}

	var want = -1
	for _, goal := range goals {
		id, ok := ids[goal]
		if !ok {
			return ErrDisconnected
		}
		ci := owner[id]
		if want == -1 {
			want = ci
			continue
		}
		if ci != want {
			return ErrDisconnected
		}
	}
	return nil
}

// adjacency indexes, per vertex, the edges currently incident to it
// with a surviving (non-empty) ModeSet.
type adjacency map[qedge.Vertex][]*qedge.QualifiedEdge

func buildAdjacency(edges []*qedge.QualifiedEdge, modes map[*qedge.QualifiedEdge]*ModeSet) adjacency {
	adj := make(adjacency)
	for _, e := range edges {
		if modes[e].empty() {
			continue
		}
		adj[e.Start] = append(adj[e.Start], e)
		adj[e.Finish] = append(adj[e.Finish], e)
	}
	return adj
}

// stripLeaves repeatedly removes edges whose non-goal endpoint has
// fewer than two surviving incident edges (spec §4.D.2): such a vertex
// can never sit inside a spanning tree with more than one neighbor, so
// any edge touching it alone can never be used non-trivially and is
// dropped, which may in turn strip its other endpoint.
func stripLeaves(goalSet map[qedge.Vertex]bool, edges []*qedge.QualifiedEdge, modes map[*qedge.QualifiedEdge]*ModeSet) {
	adj := buildAdjacency(edges, modes)

	degree := make(map[qedge.Vertex]int, len(adj))
	for v, es := range adj {
		degree[v] = len(es)
	}

	queue := make([]qedge.Vertex, 0, len(degree))
	queued := make(map[qedge.Vertex]bool, len(degree))
	enqueue := func(v qedge.Vertex) {
		if goalSet[v] || queued[v] {
			return
		}
		queued[v] = true
		queue = append(queue, v)
	}
	for v, d := range degree {
		if d < 2 {
			enqueue(v)
		}
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		queued[v] = false
		if goalSet[v] || degree[v] >= 2 {
			continue
		}

		remaining := adj[v]
		var live []*qedge.QualifiedEdge
		for _, e := range remaining {
			if modes[e].empty() {
				continue
			}
			live = append(live, e)
		}
		adj[v] = live
		degree[v] = len(live)
		if len(live) >= 2 {
			continue
		}
		for _, e := range live {
			modes[e] = &ModeSet{}
			other, _ := e.Other(v)
			degree[other]--
			if !goalSet[other] {
				enqueue(other)
			}
		}
		adj[v] = nil
		degree[v] = 0
	}
}

// FinalizeTopology verifies that every goal still has at least one
// surviving incident edge (spec §4.D.6); if not, the planner cannot
// possibly connect that goal and Run reports ErrDetachedGoal.
func FinalizeTopology(goals []qedge.Vertex, edges []*qedge.QualifiedEdge, modes map[*qedge.QualifiedEdge]*ModeSet) error {
	adj := buildAdjacency(edges, modes)
	for _, g := range goals {
		if len(adj[g]) == 0 {
			return ErrDetachedGoal
		}
	}
	return nil
}
