package routing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvodelta/meshplan/capacity"
	"github.com/arvodelta/meshplan/demand"
	"github.com/arvodelta/meshplan/qedge"
	"github.com/arvodelta/meshplan/routing"
)

// line builds a three-vertex chain A-H-B where H is a non-goal hub,
// with goals A and B: scenario S1's two goals, with S1's single edge
// split by a hub.
func line(t *testing.T, capA, capB float64) []*qedge.QualifiedEdge {
	t.Helper()
	e1, err := qedge.New("A", "H", capacity.Of(capacity.At(capA)), 1)
	require.NoError(t, err)
	e2, err := qedge.New("H", "B", capacity.Of(capacity.At(capB)), 1)
	require.NoError(t, err)
	return []*qedge.QualifiedEdge{e1, e2}
}

func TestRun_TwoGoalChain_AllModes(t *testing.T) {
	goals := []qedge.Vertex{"A", "B"}
	df, err := demand.NewFlat(2, capacity.At(3))
	require.NoError(t, err)

	edges := line(t, 3, 3)
	res, err := routing.Run(goals, df, edges, routing.WithAllEdgeModes())
	require.NoError(t, err)

	for _, e := range edges {
		ms := res.Modes[e]
		require.NotNil(t, ms)
		require.NotEmpty(t, ms.Modes)
	}
}

func TestRun_InsufficientCapacityEliminatesEveryMode(t *testing.T) {
	goals := []qedge.Vertex{"A", "B"}
	df, err := demand.NewFlat(2, capacity.At(10))
	require.NoError(t, err)

	edges := line(t, 1, 1)
	_, err = routing.Run(goals, df, edges)
	require.ErrorIs(t, err, routing.ErrDetachedGoal)
}

func TestRun_DetectsDisconnectedGoals(t *testing.T) {
	goals := []qedge.Vertex{"A", "Z"}
	df, err := demand.NewFlat(2, capacity.At(1))
	require.NoError(t, err)

	edges := line(t, 5, 5) // "Z" never appears
	_, err = routing.Run(goals, df, edges)
	require.ErrorIs(t, err, routing.ErrDisconnected)
}

func TestRun_StripsDeadEndHub(t *testing.T) {
	goals := []qedge.Vertex{"A", "B"}
	df, err := demand.NewFlat(2, capacity.At(1))
	require.NoError(t, err)

	main := line(t, 5, 5)
	deadEnd, err := qedge.New("H", "Dead", capacity.Of(capacity.At(5)), 1)
	require.NoError(t, err)
	edges := append(main, deadEnd)

	res, err := routing.Run(goals, df, edges)
	require.NoError(t, err)
	require.True(t, res.Modes[deadEnd].Modes == nil || len(res.Modes[deadEnd].Modes) == 0)
}

func TestRun_RequiresAtLeastTwoGoals(t *testing.T) {
	df, err := demand.NewFlat(2, capacity.At(1))
	require.NoError(t, err)
	_, err = routing.Run([]qedge.Vertex{"A"}, df, line(t, 1, 1))
	require.ErrorIs(t, err, routing.ErrNoGoals)
}

func TestSteppedAssessor_HaltsAtEnd(t *testing.T) {
	a := routing.SteppedAssessor(1.0, 0.2, 4)
	cur := 1.0
	for i := 0; i < 4; i++ {
		next := a.Assess(cur, nil)
		if next < 0 || next >= cur {
			break
		}
		cur = next
	}
	require.InDelta(t, 0.2, cur, 1e-9)
}
