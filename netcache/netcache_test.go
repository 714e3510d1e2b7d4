package netcache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvodelta/meshplan/bitset"
	"github.com/arvodelta/meshplan/capacity"
	"github.com/arvodelta/meshplan/demand"
	"github.com/arvodelta/meshplan/netcache"
)

// countingFlat wraps demand.Flat and counts real Get calls, so tests
// can assert the singleflight/cache layer actually collapses repeats.
type countingFlat struct {
	inner demand.DemandFunction
	calls int64
}

func (c *countingFlat) Degree() int { return c.inner.Degree() }

func (c *countingFlat) Get(s bitset.Set) (capacity.Capacity, error) {
	atomic.AddInt64(&c.calls, 1)
	return c.inner.Get(s)
}

func (c *countingFlat) GetPair(s bitset.Set) (capacity.BidiCapacity, error) {
	up, err := c.Get(s)
	if err != nil {
		return capacity.BidiCapacity{}, err
	}
	dn, err := c.Get(s.Complement())
	if err != nil {
		return capacity.BidiCapacity{}, err
	}
	return capacity.BidiCapacity{Ingress: up, Egress: dn}, nil
}

func (c *countingFlat) Reduce(groups []bitset.Set) (demand.DemandFunction, error) {
	return c.inner.Reduce(groups)
}

func (c *countingFlat) Map(perm []int) (demand.DemandFunction, error) {
	return c.inner.Map(perm)
}

func (c *countingFlat) Tabulate() demand.DemandFunction { return c.inner.Tabulate() }

func newCountingFlat(t *testing.T, degree int) *countingFlat {
	t.Helper()
	f, err := demand.NewFlat(degree, capacity.At(5))
	require.NoError(t, err)
	return &countingFlat{inner: f}
}

func TestCached_Get_CachesRepeatCalls(t *testing.T) {
	inner := newCountingFlat(t, 4)
	c := netcache.Wrap(inner)

	s := bitset.FromBits(4, 0, 1)
	got1, err := c.Get(s)
	require.NoError(t, err)
	got2, err := c.Get(s)
	require.NoError(t, err)

	require.Equal(t, got1, got2)
	require.EqualValues(t, 1, atomic.LoadInt64(&inner.calls))
}

func TestCached_Get_DifferentSubsetsNotShared(t *testing.T) {
	inner := newCountingFlat(t, 4)
	c := netcache.Wrap(inner)

	_, err := c.Get(bitset.FromBits(4, 0))
	require.NoError(t, err)
	_, err = c.Get(bitset.FromBits(4, 1))
	require.NoError(t, err)

	require.EqualValues(t, 2, atomic.LoadInt64(&inner.calls))
}

func TestCached_Get_RejectsInvalidSubsetWithoutCaching(t *testing.T) {
	inner := newCountingFlat(t, 4)
	c := netcache.Wrap(inner)

	_, err := c.Get(bitset.New(4)) // empty subset: invalid
	require.Error(t, err)
	_, err = c.Get(bitset.New(4))
	require.Error(t, err)

	// Neither call was cached (both hit inner.Get, which rejects).
	require.EqualValues(t, 2, atomic.LoadInt64(&inner.calls))
}

func TestCached_Get_ConcurrentCallsCollapseToOneCompute(t *testing.T) {
	inner := newCountingFlat(t, 6)
	c := netcache.Wrap(inner)
	s := bitset.FromBits(6, 0, 1, 2)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := c.Get(s)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt64(&inner.calls))
}

func TestCached_GetPair_Symmetry(t *testing.T) {
	inner := newCountingFlat(t, 5)
	c := netcache.Wrap(inner)

	s := bitset.FromBits(5, 0, 2)
	pair, err := c.GetPair(s)
	require.NoError(t, err)

	up, err := c.Get(s)
	require.NoError(t, err)
	dn, err := c.Get(s.Complement())
	require.NoError(t, err)

	require.Equal(t, up, pair.Ingress)
	require.Equal(t, dn, pair.Egress)
}

func TestCached_GetMasked_TruncatesExtraBits(t *testing.T) {
	inner := newCountingFlat(t, 3)
	c := netcache.Wrap(inner)

	// Bit 5 is out of range for degree 3; GetMasked truncates rather
	// than rejecting, per spec §5 "truncating bitmasks to degree".
	v1, err := c.GetMasked(0b001)
	require.NoError(t, err)
	v2, err := c.GetMasked(0b100001)
	require.NoError(t, err)
	require.Equal(t, v1, v2)
}

func TestCached_Warm_PopulatesCacheConcurrently(t *testing.T) {
	inner := newCountingFlat(t, 5)
	c := netcache.Wrap(inner)

	subsets := []bitset.Set{
		bitset.FromBits(5, 0),
		bitset.FromBits(5, 1),
		bitset.FromBits(5, 2),
		bitset.FromBits(5, 0, 1),
	}
	err := c.Warm(context.Background(), subsets)
	require.NoError(t, err)
	require.EqualValues(t, len(subsets), atomic.LoadInt64(&inner.calls))

	// A second Warm over the same subsets is free: everything is cached.
	err = c.Warm(context.Background(), subsets)
	require.NoError(t, err)
	require.EqualValues(t, len(subsets), atomic.LoadInt64(&inner.calls))
}

func TestCached_Warm_SkipsInvalidSubsets(t *testing.T) {
	inner := newCountingFlat(t, 4)
	c := netcache.Wrap(inner)

	err := c.Warm(context.Background(), []bitset.Set{
		bitset.New(4),  // empty: skipped
		bitset.Full(4), // full: skipped
		bitset.FromBits(4, 0),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt64(&inner.calls))
}

func TestCached_Reduce_Map_Tabulate_ReturnFreshCached(t *testing.T) {
	inner := newCountingFlat(t, 4)
	c := netcache.Wrap(inner)

	reduced, err := c.Reduce([]bitset.Set{
		bitset.FromBits(4, 0, 1),
		bitset.FromBits(4, 2, 3),
	})
	require.NoError(t, err)
	_, ok := reduced.(*netcache.Cached)
	require.True(t, ok)

	mapped, err := c.Map([]int{1, 0, 3, 2})
	require.NoError(t, err)
	_, ok = mapped.(*netcache.Cached)
	require.True(t, ok)

	tab := c.Tabulate()
	_, ok = tab.(*netcache.Cached)
	require.True(t, ok)
}
