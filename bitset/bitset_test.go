package bitset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvodelta/meshplan/bitset"
)

func TestSet_BasicMembership(t *testing.T) {
	s := bitset.New(5)
	require.True(t, s.IsEmpty())

	s = s.With(0).With(3)
	require.True(t, s.Test(0))
	require.True(t, s.Test(3))
	require.False(t, s.Test(1))
	require.Equal(t, 2, s.Popcount())
	require.Equal(t, []int{0, 3}, s.Bits())
}

func TestSet_ComplementAndFull(t *testing.T) {
	full := bitset.Full(5)
	require.True(t, full.IsFull())

	s := bitset.FromBits(5, 0, 1, 2)
	comp := s.Complement()
	require.Equal(t, []int{3, 4}, comp.Bits())
	require.True(t, s.Union(comp).Equal(full))
	require.True(t, s.Disjoint(comp))
}

func TestSet_UnionIntersectSubset(t *testing.T) {
	a := bitset.FromBits(6, 0, 1, 2)
	b := bitset.FromBits(6, 1, 2, 3)

	require.Equal(t, []int{0, 1, 2, 3}, a.Union(b).Bits())
	require.Equal(t, []int{1, 2}, a.Intersect(b).Bits())
	require.True(t, bitset.FromBits(6, 1, 2).IsSubsetOf(a))
	require.False(t, a.IsSubsetOf(b))
}

func TestSet_FromMask64RoundTrips(t *testing.T) {
	s := bitset.FromMask64(10, 0b0110010110)
	mask, ok := s.Mask64()
	require.True(t, ok)
	require.Equal(t, uint64(0b0110010110), mask)
}

func TestSet_WideWidthBeyond64(t *testing.T) {
	s := bitset.New(130)
	s = s.With(0).With(64).With(129)
	require.Equal(t, []int{0, 64, 129}, s.Bits())
	_, ok := s.Mask64()
	require.False(t, ok)
}

func TestSet_CompareIsLexicographicOnBitPositions(t *testing.T) {
	a := bitset.FromBits(8, 0, 2)
	b := bitset.FromBits(8, 0, 3)
	c := bitset.FromBits(8, 0, 2)

	if a.Compare(b) >= 0 {
		t.Fatalf("expected a < b, got Compare=%d", a.Compare(b))
	}
	if a.Compare(c) != 0 {
		t.Fatalf("expected a == c, got Compare=%d", a.Compare(c))
	}
	if b.Compare(a) <= 0 {
		t.Fatalf("expected b > a, got Compare=%d", b.Compare(a))
	}
}

func TestSet_WidthMismatchPanics(t *testing.T) {
	a := bitset.New(4)
	b := bitset.New(5)
	require.Panics(t, func() { a.Union(b) })
	require.Panics(t, func() { a.Compare(b) })
}
