// Package qedge defines the graph model the planner consumes: a
// Vertex is an opaque comparable identifier (mirroring core.Vertex.ID
// in the teacher, minus the mutable Graph container — ownership here is
// external per spec §3) and a QualifiedEdge pairs two vertices with a
// BidiCapacity and a scalar cost.
//
// Unlike the teacher's core.Graph, nothing here is mutable after
// construction: edges are created once by the caller and handed to the
// planner by reference (spec §3 "Ownership: edges are externally owned
// and passed by reference into the planner"), so there is no
// sync.RWMutex to carry over — there is nothing to protect.
package qedge

import (
	"errors"
	"fmt"

	"github.com/arvodelta/meshplan/capacity"
)

// ErrEmptyVertex mirrors core.ErrEmptyVertexID: a QualifiedEdge may not
// reference the empty string as a named vertex when Vertex is string.
var ErrEmptyVertex = errors.New("qedge: vertex identifier is empty")

// ErrNegativeCost indicates a QualifiedEdge was constructed with a
// negative cost, which the routing stage's bias arithmetic (spec
// §4.D.4, bias = (d_start - d_finish) / cost) cannot sensibly divide by.
var ErrNegativeCost = errors.New("qedge: cost must be non-negative")

// ErrSelfLoop indicates start == finish, which the teacher's core
// package guards behind WithLoops(); a planner edge is never useful as
// a self-loop because it can never separate one goal side from another.
var ErrSelfLoop = errors.New("qedge: start and finish must differ")

// Vertex identifies an endpoint by a string ID. The ports of the
// projection variant in spec §6.2 (planner.Port) are strings as well.
type Vertex = string

// QualifiedEdge is a directed edge carrying a bidirectional capacity
// and a scalar cost (spec §3). Traffic may use the edge in either
// direction (capacity.BidiCapacity.Ingress / .Egress), but Start/Finish
// fix a canonical orientation used to interpret EdgeMode (spec §3).
type QualifiedEdge struct {
	Start    Vertex
	Finish   Vertex
	Capacity capacity.BidiCapacity
	Cost     float64
}

// New constructs a validated QualifiedEdge.
func New(start, finish Vertex, cap capacity.BidiCapacity, cost float64) (*QualifiedEdge, error) {
	if start == "" || finish == "" {
		return nil, ErrEmptyVertex
	}
	if start == finish {
		return nil, ErrSelfLoop
	}
	if cost < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrNegativeCost, cost)
	}
	return &QualifiedEdge{Start: start, Finish: finish, Capacity: cap, Cost: cost}, nil
}

// Other returns the endpoint of e that is not v, and whether v was
// actually one of e's endpoints.
func (e *QualifiedEdge) Other(v Vertex) (Vertex, bool) {
	switch v {
	case e.Start:
		return e.Finish, true
	case e.Finish:
		return e.Start, true
	default:
		return "", false
	}
}

// Incident reports whether v is one of e's endpoints.
func (e *QualifiedEdge) Incident(v Vertex) bool {
	return v == e.Start || v == e.Finish
}
