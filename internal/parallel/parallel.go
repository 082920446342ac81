// Package parallel runs data-parallel loops over an index range on a bounded
// errgroup. Each chunk is a contiguous, disjoint [lo, hi) range so callers
// can write their share of an output buffer without locking.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers returns n if positive, otherwise GOMAXPROCS.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// Chunks splits [0, n) into at most parts contiguous ranges of near-equal
// size. It returns the range boundaries, len(result) = ranges+1.
func Chunks(n, parts int) []int {
	if n <= 0 {
		return []int{0}
	}
	if parts <= 0 {
		parts = 1
	}
	if parts > n {
		parts = n
	}

	bounds := make([]int, parts+1)
	base, extra := n/parts, n%parts
	for i := range parts {
		size := base
		if i < extra {
			size++
		}
		bounds[i+1] = bounds[i] + size
	}
	return bounds
}

// For calls fn once per chunk of [0, n) with at most workers goroutines in
// flight. The first error cancels ctx for the remaining chunks and is
// returned; chunks that have not started when ctx is done are skipped.
func For(ctx context.Context, n, workers int, fn func(ctx context.Context, lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	workers = Workers(workers)

	// Oversplit so uneven chunks still balance across workers.
	bounds := Chunks(n, workers*4)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for c := 0; c+1 < len(bounds); c++ {
		lo, hi := bounds[c], bounds[c+1]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, lo, hi)
		})
	}
	return g.Wait()
}
