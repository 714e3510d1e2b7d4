// Package netcache implements the ambient "network-model cache" (spec
// §5): many independent plan() invocations may share one
// DemandFunction instance (a stable description of the network's
// demand), and concurrently ask it for the same goal-subset's demand.
// Cached memoizes Get results keyed by a canonical form of the subset
// and uses golang.org/x/sync/singleflight so concurrent callers asking
// for a still-uncomputed subset share one inner computation rather
// than running it redundantly — at-most-once-in-flight per key.
package netcache

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/arvodelta/meshplan/bitset"
	"github.com/arvodelta/meshplan/capacity"
	"github.com/arvodelta/meshplan/demand"
)

// Cached wraps a demand.DemandFunction, memoizing Get by subset. It is
// itself a DemandFunction, so it can be passed anywhere a plain one
// can (including directly into planner.Plan).
type Cached struct {
	inner  demand.DemandFunction
	degree int

	group singleflight.Group
	mu    sync.RWMutex
	values map[string]capacity.Capacity
}

// Wrap constructs a Cached around inner. The cache starts empty; it is
// safe for concurrent use by multiple goroutines sharing inner.
func Wrap(inner demand.DemandFunction) *Cached {
	return &Cached{
		inner:  inner,
		degree: inner.Degree(),
		values: make(map[string]capacity.Capacity),
	}
}

// Degree returns the wrapped function's degree.
func (c *Cached) Degree() int { return c.degree }

// canonicalKey renders s's bit positions as a stable string key. Two
// Sets with the same bits always render identically regardless of how
// they were constructed (from a mask, from FromBits, after a round
// trip through Complement), which is the "canonical form" the cache
// keys on.
func canonicalKey(s bitset.Set) string {
	bits := s.Bits()
	buf := make([]byte, 0, len(bits)*4)
	for _, b := range bits {
		buf = strconv.AppendInt(buf, int64(b), 10)
		buf = append(buf, ',')
	}
	return string(buf)
}

// Get returns the cached demand for s, computing and memoizing it via
// inner.Get on a cache miss. Empty and full subsets are invalid by
// DemandFunction's own contract; those are passed straight through to
// inner.Get for its validation error rather than cached (there is
// nothing useful to memoize for an input that always fails).
func (c *Cached) Get(s bitset.Set) (capacity.Capacity, error) {
	if s.Len() != c.degree {
		return capacity.Capacity{}, fmt.Errorf("%w: subset width %d != degree %d", demand.ErrInvalidDegree, s.Len(), c.degree)
	}
	if s.IsEmpty() || s.IsFull() {
		return c.inner.Get(s)
	}

	key := canonicalKey(s)
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		res, err := c.inner.Get(s)
		if err != nil {
			return nil, err
		}
		c.store(key, res)
		return res, nil
	})
	if err != nil {
		return capacity.Capacity{}, err
	}
	return v.(capacity.Capacity), nil
}

func (c *Cached) lookup(key string) (capacity.Capacity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Cached) store(key string, v capacity.Capacity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = v
}

// GetPair returns (Get(s), Get(not s)), each independently cached —
// the same symmetry law every demand package variant already follows
// (pairFromGet), so wrapping a function in Cached never changes its
// observable GetPair behavior, only its cost on repeat lookups.
func (c *Cached) GetPair(s bitset.Set) (capacity.BidiCapacity, error) {
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

// GetMasked is a convenience entry point for callers holding a raw
// bitmask that may carry bits beyond this function's degree (spec §5
// "truncate bitmasks to degree"): those extra high bits are silently
// dropped rather than rejected, since this is a performance layer, not
// a validation gate — inner.Get still enforces the real domain rules
// once the truncated mask is turned into a Set. Only usable when
// degree <= 64 (the width bitset.FromMask64 itself supports).
func (c *Cached) GetMasked(mask uint64) (capacity.Capacity, error) {
	if c.degree > 64 {
		return capacity.Capacity{}, fmt.Errorf("%w: GetMasked requires degree <= 64, got %d", demand.ErrInvalidDegree, c.degree)
	}
	truncated := mask
	if c.degree < 64 {
		truncated &= (uint64(1) << uint(c.degree)) - 1
	}
	return c.Get(bitset.FromMask64(c.degree, truncated))
}

// Reduce, Map and Tabulate delegate to inner and wrap the result in a
// fresh Cached, since a reduced/mapped/tabulated function is a
// distinct DemandFunction with its own independent subset space.
func (c *Cached) Reduce(groups []bitset.Set) (demand.DemandFunction, error) {
	reduced, err := c.inner.Reduce(groups)
	if err != nil {
		return nil, err
	}
	return Wrap(reduced), nil
}

func (c *Cached) Map(perm []int) (demand.DemandFunction, error) {
	mapped, err := c.inner.Map(perm)
	if err != nil {
		return nil, err
	}
	return Wrap(mapped), nil
}

func (c *Cached) Tabulate() demand.DemandFunction {
	return Wrap(c.inner.Tabulate())
}

// Warm pre-populates the cache for every subset in subsets, fetching
// misses concurrently under a single cancellable errgroup.Group — the
// same "parallel load, first error cancels the rest" shape the pack's
// workspace loader uses for parallel repo loads. Warm returns the
// first error encountered (if any). Once ctx is cancelled or a fetch
// fails, goroutines that have not yet begun their fetch return the
// context's error without calling Get; a Get already in progress runs
// to completion. Subsets already cached are skipped without spawning a
// goroutine.
func (c *Cached) Warm(ctx context.Context, subsets []bitset.Set) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range subsets {
		s := s
		if s.Len() != c.degree || s.IsEmpty() || s.IsFull() {
			continue
		}
		if _, ok := c.lookup(canonicalKey(s)); ok {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			_, err := c.Get(s)
			return err
		})
	}
	return g.Wait()
}
