package routing

import (
	"container/heap"
	"math"

	"github.com/arvodelta/meshplan/qedge"
)

// distancesToGoal computes, for every vertex that can reach goal g
// under the current surviving modes (spec §4.D.3), the shortest
// distance to g. An incoming edge at Finish can carry g toward Finish
// when some surviving mode has bit g set, which means dist[Finish] is
// relaxable from dist[Start]; symmetrically, an outgoing edge at Start
// can carry g toward Start when some surviving mode has bit g clear,
// which relaxes dist[Start] from dist[Finish]. Running those two
// relaxation rules to a fixpoint from dist[g]=0 is a single-source
// Dijkstra seeded at g over the adjacency list built below.
//
// This reuses the teacher's lazy-decrease-key heap pattern from
// dijkstra.Dijkstra (push-don't-update, skip stale pops via a visited
// set) rather than its map[string]int64 core.Graph walk, since here
// the graph is rebuilt fresh from the current ModeSet every round.
func distancesToGoal(goal qedge.Vertex, goalBit int, edges []*qedge.QualifiedEdge, modes map[*qedge.QualifiedEdge]*ModeSet) map[qedge.Vertex]float64 {
	adj := make(map[qedge.Vertex][]arc)
	for _, e := range edges {
		ms := modes[e]
		if ms.empty() {
			continue
		}
		if ms.hasBit(goalBit, true) {
			// dist[Finish] relaxes from dist[Start].
			adj[e.Start] = append(adj[e.Start], arc{to: e.Finish, cost: e.Cost})
		}
		if ms.hasBit(goalBit, false) {
			// dist[Start] relaxes from dist[Finish].
			adj[e.Finish] = append(adj[e.Finish], arc{to: e.Start, cost: e.Cost})
		}
	}

	dist := map[qedge.Vertex]float64{goal: 0}
	visited := make(map[qedge.Vertex]bool)

	pq := make(nodePQ, 0, len(adj))
	heap.Init(&pq)
	heap.Push(&pq, &nodeItem{id: goal, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*nodeItem)
		u, d := item.id, item.dist
		if visited[u] {
			continue
		}
		visited[u] = true

		for _, a := range adj[u] {
			nd := d + a.cost
			if existing, ok := dist[a.to]; ok && nd >= existing {
				continue
			}
			dist[a.to] = nd
			heap.Push(&pq, &nodeItem{id: a.to, dist: nd})
		}
	}

	return dist
}

// distanceOf returns dist[v], or +Inf/unreachable if v never appears.
func distanceOf(dist map[qedge.Vertex]float64, v qedge.Vertex) (float64, bool) {
	d, ok := dist[v]
	if !ok {
		return math.Inf(1), false
	}
	return d, true
}

// nodeItem represents a vertex and its current distance to the goal
// this pass is rooted at.
type nodeItem struct {
	id   qedge.Vertex
	dist float64
}

// nodePQ is a min-heap of *nodeItem ordered by dist ascending, using
// the same lazy-decrease-key discipline as dijkstra.nodePQ: stale
// entries are left in place and skipped on pop via a visited set.
type nodePQ []*nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
