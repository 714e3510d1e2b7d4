package qedge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvodelta/meshplan/capacity"
	"github.com/arvodelta/meshplan/qedge"
)

func TestNew_Valid(t *testing.T) {
	e, err := qedge.New("A", "B", capacity.Of(capacity.At(5)), 1.5)
	require.NoError(t, err)
	require.Equal(t, "A", e.Start)
	require.Equal(t, "B", e.Finish)
	require.Equal(t, 1.5, e.Cost)
}

func TestNew_RejectsEmptyVertex(t *testing.T) {
	_, err := qedge.New("", "B", capacity.BidiCapacity{}, 1)
	require.ErrorIs(t, err, qedge.ErrEmptyVertex)
}

func TestNew_RejectsSelfLoop(t *testing.T) {
	_, err := qedge.New("A", "A", capacity.BidiCapacity{}, 1)
	require.ErrorIs(t, err, qedge.ErrSelfLoop)
}

func TestNew_RejectsNegativeCost(t *testing.T) {
	_, err := qedge.New("A", "B", capacity.BidiCapacity{}, -1)
	require.ErrorIs(t, err, qedge.ErrNegativeCost)
}

func TestOtherAndIncident(t *testing.T) {
	e, err := qedge.New("A", "B", capacity.BidiCapacity{}, 1)
	require.NoError(t, err)

	other, ok := e.Other("A")
	require.True(t, ok)
	require.Equal(t, "B", other)

	other, ok = e.Other("B")
	require.True(t, ok)
	require.Equal(t, "A", other)

	_, ok = e.Other("C")
	require.False(t, ok)

	require.True(t, e.Incident("A"))
	require.True(t, e.Incident("B"))
	require.False(t, e.Incident("C"))
}
