// Package parallel runs data-parallel loops over disjoint index ranges.
//
// Each worker receives a contiguous [start, end) slice of the index space and
// must write only within it, so the loops need no synchronization beyond the
// final barrier.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForN partitions [0, n) into at most workers contiguous chunks and runs fn
// on each concurrently. A workers value <= 0 selects GOMAXPROCS. ForN returns
// the first error and waits for all chunks before returning.
func ForN(ctx context.Context, n, workers int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(start, end)
		})
	}

	return g.Wait()
}
