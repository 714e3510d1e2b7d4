// Package routing implements the mode-pruning and goal-reachability
// stage that narrows each edge's set of feasible "modes" (which goals
// send on its ingress side versus its egress side) down to the modes
// that are actually capacity-feasible and topologically reachable.
//
// The pipeline runs in the order the teacher's own multi-pass
// algorithms (flow, prim_kruskal) favor: validate inputs, build a
// working state, run successive narrowing passes until a fixpoint,
// then finalize. Concretely: PruneByCapacity, then Run ties together
// topology derivation, leaf stripping, distance computation, bias
// elimination and the threshold-tightening loop, then finalizes the
// surviving topology.
package routing

import (
	"errors"
	"fmt"
	"math"

	"github.com/arvodelta/meshplan/qedge"
)

// ErrNoGoals indicates Run was called with fewer than two goals; a
// planner with zero or one goal has no cut to route around.
var ErrNoGoals = errors.New("routing: at least two goals are required")

// ErrDetachedGoal indicates that, after pruning and elimination, some
// goal vertex has no surviving incident edge — no spanning structure
// can possibly reach it.
var ErrDetachedGoal = errors.New("routing: a goal has no reachable edge")

// ErrDisconnected indicates the input edge set does not connect all
// goal vertices even ignoring mode feasibility — checked early via a
// plain connectivity pass so the more expensive pruning passes can
// fail fast.
var ErrDisconnected = errors.New("routing: goals are not all mutually reachable")

// errDegreeMismatch indicates the demand function's degree disagrees
// with the number of goal vertices supplied.
var errDegreeMismatch = errors.New("routing: demand function degree does not match goal count")

// ErrInvalidDegree reports a demand-function/goal-count mismatch.
func ErrInvalidDegree(degree, goalCount int) error {
	return fmt.Errorf("%w: degree=%d goals=%d", errDegreeMismatch, degree, goalCount)
}

// Assessor decides, after each fixpoint of capacity pruning plus bias
// elimination, whether to run another round at a tighter bias
// threshold. It is consulted with the threshold just used and the
// current per-edge radices (len(modes)+1, in input edge order).
//
// Returning a value < 0, or a value >= current, halts the threshold-
// tightening loop. Returning a value in [0, current) runs one more
// round at that threshold.
type Assessor interface {
	Assess(current float64, radices []int) float64
}

// AssessorFunc adapts a plain function to the Assessor interface.
type AssessorFunc func(current float64, radices []int) float64

// Assess calls f.
func (f AssessorFunc) Assess(current float64, radices []int) float64 {
	return f(current, radices)
}

func haltImmediately(float64, []int) float64 { return -1 }

// Options configures Run.
type Options struct {
	// InitialThreshold is the bias magnitude above which an edge-goal
	// pair is eliminated in the first round (spec §4.D.4).
	InitialThreshold float64
	// Assessor is consulted after each fixpoint to decide whether to
	// tighten the threshold and run again (spec §4.D.5).
	Assessor Assessor
}

// Option configures Options.
type Option func(*Options)

// DefaultOptions returns the "all edge modes" behavior: an infinite
// initial threshold means no edge-goal pair is ever eliminated, and
// the assessor halts after the first (no-op) round. This is the least
// surprising default: nothing is pruned beyond what capacity and
// topology already rule out.
func DefaultOptions() Options {
	o := Options{}
	WithAllEdgeModes()(&o)
	return o
}

// WithInitialThreshold sets the bias threshold used for the first
// elimination round.
func WithInitialThreshold(v float64) Option {
	return func(o *Options) { o.InitialThreshold = v }
}

// WithAssessor sets the Assessor consulted after each fixpoint.
func WithAssessor(a Assessor) Option {
	return func(o *Options) { o.Assessor = a }
}

// WithAllEdgeModes configures Run to never eliminate a mode on bias
// grounds: every mode that survives capacity pruning, leaf stripping
// and goal-reachability stays in play.
func WithAllEdgeModes() Option {
	return func(o *Options) {
		o.InitialThreshold = math.Inf(1)
		o.Assessor = AssessorFunc(haltImmediately)
	}
}

// WithFixedThreshold runs exactly one elimination round at v, then
// halts — no iterative tightening.
func WithFixedThreshold(v float64) Option {
	return func(o *Options) {
		o.InitialThreshold = v
		o.Assessor = AssessorFunc(haltImmediately)
	}
}

// SteppedAssessor tightens the threshold linearly from start to end
// over the given number of steps, then halts.
func SteppedAssessor(start, end float64, steps int) Assessor {
	if steps <= 0 {
		return AssessorFunc(haltImmediately)
	}
	delta := (start - end) / float64(steps)
	return AssessorFunc(func(current float64, _ []int) float64 {
		next := current - delta
		if next < end {
			return end
		}
		return next
	})
}

// arc is a directed edge in a per-goal direction-constrained graph
// (spec §4.D.3): traversing it moves one step closer to the goal.
type arc struct {
	to   qedge.Vertex
	cost float64
}
