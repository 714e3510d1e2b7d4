// Package planner implements Component G, the orchestrating entry
// point: plan(goals, demand, edges) -> an iterable of spanning-tree
// solutions (spec §4.F, §6.1). It wires together, in order, the
// routing stage (capacity pruning, leaf stripping, goal-reachability
// and bias elimination), the constraint compiler, and the mixed-radix
// iterator, then translates each validated digit tuple into a
// per-edge usage map.
package planner

import (
	"errors"
	"math"
	"sort"

	"github.com/arvodelta/meshplan/bitset"
	"github.com/arvodelta/meshplan/capacity"
	"github.com/arvodelta/meshplan/constraints"
	"github.com/arvodelta/meshplan/demand"
	"github.com/arvodelta/meshplan/qedge"
	"github.com/arvodelta/meshplan/radix"
	"github.com/arvodelta/meshplan/routing"
)

// UsedEdge describes how a single edge participates in one spanning
// solution: which goals sit on its Start-side (Source) and the
// bandwidth that configuration demands of the edge (Consumed).
type UsedEdge struct {
	Source   bitset.Set
	Consumed capacity.BidiCapacity
}

// Solution maps every edge actually used in a spanning structure to
// its usage. Edges absent from the map are disused (spec §4.F return
// type: "a map from edge to (source-set, consumed-capacity)").
type Solution map[*qedge.QualifiedEdge]UsedEdge

// config collects the options Plan/PlanPorts accept.
type config struct {
	routingOpts []routing.Option
	radixOpts   []radix.Option
}

// Option configures Plan and PlanPorts.
type Option func(*config)

// WithRoutingOptions forwards options to the routing stage (threshold,
// assessor; spec §4.D.5).
func WithRoutingOptions(opts ...routing.Option) Option {
	return func(c *config) { c.routingOpts = append(c.routingOpts, opts...) }
}

// WithEnumerationOptions forwards options to the mixed-radix iterator
// (currently the optional deadline; spec §4.C).
func WithEnumerationOptions(opts ...radix.Option) Option {
	return func(c *config) { c.radixOpts = append(c.radixOpts, opts...) }
}

// planMode distinguishes the three shapes a Planner's output can take:
// the trivial single-empty-solution case, the no-feasible-tree empty
// stream, and genuine enumeration.
type planMode int

const (
	modeReal planMode = iota
	modeOneEmpty
	modeEmpty
)

// Planner is the pull-based handle Plan/PlanPorts return: call Next
// until it returns false, reading Solution() after each true result.
// This mirrors radix.Iterator's own Next/accessor shape, since a
// Planner is ultimately just a translated iterator (or one of its two
// degenerate cases).
type Planner struct {
	mode    planMode
	emitted bool
	mapped  *radix.Mapped[Solution]
}

// Next advances to the next solution.
func (p *Planner) Next() bool {
	switch p.mode {
	case modeOneEmpty:
		if p.emitted {
			return false
		}
		p.emitted = true
		return true
	case modeEmpty:
		return false
	default:
		return p.mapped.Next()
	}
}

// Solution returns the current solution. Only meaningful immediately
// after Next returns true.
func (p *Planner) Solution() Solution {
	if p.mode != modeReal {
		return Solution{}
	}
	return p.mapped.Value()
}

// Plan builds a Planner over vertex-identified edges (spec §4.F).
func Plan(goals []qedge.Vertex, df demand.DemandFunction, edges []*qedge.QualifiedEdge, opts ...Option) (*Planner, error) {
	return plan(goals, df, edges, edges, opts...)
}

// plan is the shared core behind Plan and PlanPorts. routingEdges and
// resultEdges must be parallel slices of equal length: routingEdges is
// what the routing/constraint/radix stages compute over, resultEdges
// is what the caller-facing Solution is keyed by. For Plan they are
// the same slice; for PlanPorts routingEdges have been projected down
// to compound vertices while resultEdges stay the original port edges.
func plan(
	goals []qedge.Vertex,
	df demand.DemandFunction,
	routingEdges []*qedge.QualifiedEdge,
	resultEdges []*qedge.QualifiedEdge,
	opts ...Option,
) (*Planner, error) {
	if len(goals) < 2 {
		return &Planner{mode: modeOneEmpty}, nil
	}

	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}

	res, err := routing.Run(goals, df, routingEdges, cfg.routingOpts...)
	if err != nil {
		if errors.Is(err, routing.ErrDisconnected) || errors.Is(err, routing.ErrDetachedGoal) {
			return &Planner{mode: modeEmpty}, nil
		}
		return nil, err
	}

	order := orderByGoalCloseness(goals, res)
	orderedRouting := make([]*qedge.QualifiedEdge, len(order))
	orderedResult := make([]*qedge.QualifiedEdge, len(order))
	for i, j := range order {
		orderedRouting[i] = routingEdges[j]
		orderedResult[i] = resultEdges[j]
	}

	edgeIndex := make(map[*qedge.QualifiedEdge]int, len(orderedRouting))
	radices := make([]int, len(orderedRouting))
	for i, e := range orderedRouting {
		edgeIndex[e] = i
		radices[i] = len(res.Modes[e].Modes) + 1
	}

	goalIndex := make(map[qedge.Vertex]int, len(goals))
	for i, g := range goals {
		goalIndex[g] = i
	}
	degree := df.Degree()
	constraintsByBase := compileVertexConstraints(orderedRouting, edgeIndex, goalIndex, degree, res)

	validator := func(pos int, digits []int) bool {
		for _, c := range constraintsByBase[pos] {
			if !c.Check(digits) {
				return false
			}
		}
		return true
	}

	it, err := radix.NewIterator(radices, validator, cfg.radixOpts...)
	if err != nil {
		return nil, err
	}

	translate := func(digits []int) Solution {
		sol := make(Solution)
		for i, e := range orderedRouting {
			d := digits[i]
			if d == 0 {
				continue
			}
			mode := res.Modes[e].Modes[d-1]
			pair, err := df.GetPair(mode)
			if err != nil {
				continue
			}
			sol[orderedResult[i]] = UsedEdge{Source: mode, Consumed: pair}
		}
		return sol
	}

	return &Planner{mode: modeReal, mapped: radix.NewMapped(it, translate)}, nil
}

// orderByGoalCloseness returns a permutation of res.Edges' indices
// (all in the original, input-stable order res.Edges was built in)
// such that edges closer to some goal sort later (spec §4.E: "edges
// closer to goals have higher indices, maximizing prefix pruning").
// Closeness is the shortest direction-constrained distance from either
// endpoint to its nearest goal, recomputed once over the final modes.
func orderByGoalCloseness(goals []qedge.Vertex, res *routing.Result) []int {
	dist := routing.Distances(goals, res.Edges, res.Modes)

	closeness := make([]float64, len(res.Edges))
	for i, e := range res.Edges {
		best := math.Inf(1)
		for gi := range goals {
			if d, ok := dist[gi][e.Start]; ok && d < best {
				best = d
			}
			if d, ok := dist[gi][e.Finish]; ok && d < best {
				best = d
			}
		}
		closeness[i] = best
	}

	order := make([]int, len(res.Edges))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return closeness[order[a]] > closeness[order[b]]
	})
	return order
}

// compileVertexConstraints groups every vertex touched by a surviving
// edge into its incident edges (in the final digit order), compiles
// the per-vertex constraints, and buckets them by the base edge index
// the radix iterator will consult them at.
func compileVertexConstraints(
	orderedEdges []*qedge.QualifiedEdge,
	edgeIndex map[*qedge.QualifiedEdge]int,
	goalIndex map[qedge.Vertex]int,
	degree int,
	res *routing.Result,
) map[int][]*constraints.Constraint {
	perVertex := make(map[qedge.Vertex][]constraints.Incidence)
	for _, e := range orderedEdges {
		if ms := res.Modes[e]; ms == nil || len(ms.Modes) == 0 {
			continue
		}
		idx := edgeIndex[e]
		perVertex[e.Start] = append(perVertex[e.Start], constraints.Incidence{
			Edge: e, Index: idx, Inward: false, Degree: degree,
		})
		perVertex[e.Finish] = append(perVertex[e.Finish], constraints.Incidence{
			Edge: e, Index: idx, Inward: true, Degree: degree,
		})
	}

	byBase := make(map[int][]*constraints.Constraint)
	for v, incs := range perVertex {
		isGoal := false
		goalBit := -1
		if gi, ok := goalIndex[v]; ok {
			isGoal = true
			goalBit = gi
		}
		for i := range incs {
			incs[i].IsGoal = isGoal
			incs[i].Goal = goalBit
		}
		for _, c := range constraints.Compile(incs, res) {
			byBase[c.BaseEdge()] = append(byBase[c.BaseEdge()], c)
		}
	}
	return byBase
}
