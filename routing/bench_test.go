package routing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/arvodelta/meshplan/capacity"
	"github.com/arvodelta/meshplan/demand"
	"github.com/arvodelta/meshplan/qedge"
	"github.com/arvodelta/meshplan/routing"
)

// triangle builds a three-goal ring A-B-C-A, each edge ample capacity
// and unit cost, the shape spec scenario S3 describes.
func triangle(b *testing.B, bw float64) []*qedge.QualifiedEdge {
	b.Helper()
	e1, err := qedge.New("A", "B", capacity.Of(capacity.At(bw)), 1)
	require.NoError(b, err)
	e2, err := qedge.New("B", "C", capacity.Of(capacity.At(bw)), 1)
	require.NoError(b, err)
	e3, err := qedge.New("C", "A", capacity.Of(capacity.At(bw)), 1)
	require.NoError(b, err)
	return []*qedge.QualifiedEdge{e1, e2, e3}
}

func BenchmarkRun_Triangle(b *testing.B) {
	goals := []qedge.Vertex{"A", "B", "C"}
	df, err := demand.NewFlat(3, capacity.At(2))
	require.NoError(b, err)
	edges := triangle(b, 10)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := routing.Run(goals, df, edges); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRun_ConcurrentPlans exercises the spec §5 guarantee that a
// DemandFunction instance is safely shareable across calls: many
// goroutines run Run concurrently against the same df and edge slice
// (edges are immutable once built, per qedge), collected under one
// errgroup.Group the same way netcache.Cached.Warm fans out its own
// concurrent fetches.
func BenchmarkRun_ConcurrentPlans(b *testing.B) {
	goals := []qedge.Vertex{"A", "B", "C"}
	df, err := demand.NewFlat(3, capacity.At(2))
	require.NoError(b, err)
	edges := triangle(b, 10)

	const fanout = 8
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g, _ := errgroup.WithContext(context.Background())
		for j := 0; j < fanout; j++ {
			g.Go(func() error {
				_, err := routing.Run(goals, df, edges)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			b.Fatal(err)
		}
	}
}
