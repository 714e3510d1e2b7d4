package planner

import (
	"errors"
	"fmt"

	"github.com/arvodelta/meshplan/demand"
	"github.com/arvodelta/meshplan/qedge"
)

// Port identifies a connection point on a compound vertex. Several
// ports can project onto the same underlying Vertex (spec §6.2: "a
// port -> vertex projection, for edges that connect ports belonging to
// compound vertices").
type Port = string

// ErrUnprojectedPort indicates a goal or edge endpoint had no entry in
// the supplied projection.
var ErrUnprojectedPort = errors.New("planner: port has no vertex projection")

// PlanPorts is the port-aware variant of Plan (spec §6.2): goals and
// edge endpoints are given as ports, each mapped down to a vertex via
// projection before routing runs. An edge whose two ports project onto
// the same vertex is an intra-vertex edge; it can never separate one
// goal side from another, so it is dropped before routing rather than
// rejected as a self-loop. The returned Solution is still keyed by the
// original port edges the caller passed in.
func PlanPorts(
	goalPorts []Port,
	projection map[Port]qedge.Vertex,
	df demand.DemandFunction,
	portEdges []*qedge.QualifiedEdge,
	opts ...Option,
) (*Planner, error) {
	goals := make([]qedge.Vertex, len(goalPorts))
	for i, p := range goalPorts {
		v, ok := projection[p]
		if !ok {
			return nil, fmt.Errorf("%w: goal port %q", ErrUnprojectedPort, p)
		}
		goals[i] = v
	}

	var routingEdges, resultEdges []*qedge.QualifiedEdge
	for i, e := range portEdges {
		startV, ok := projection[e.Start]
		if !ok {
			return nil, fmt.Errorf("%w: edge %d start port %q", ErrUnprojectedPort, i, e.Start)
		}
		finishV, ok := projection[e.Finish]
		if !ok {
			return nil, fmt.Errorf("%w: edge %d finish port %q", ErrUnprojectedPort, i, e.Finish)
		}
		if startV == finishV {
			continue
		}
		projected, err := qedge.New(startV, finishV, e.Capacity, e.Cost)
		if err != nil {
			return nil, err
		}
		routingEdges = append(routingEdges, projected)
		resultEdges = append(resultEdges, e)
	}

	return plan(goals, df, routingEdges, resultEdges, opts...)
}
