package grabcut

import "golang.org/x/sync/errgroup"

// Below this many pixels per worker the goroutine overhead dominates.
const minChunk = 2048

// parallelFor splits [0,n) into contiguous chunks and runs fn on each with at
// most workers goroutines. Chunks never overlap, so fn may write its own
// output slots without locking.
func parallelFor(n, workers int, fn func(lo, hi int) error) error {
	if n == 0 {
		return nil
	}
	chunks := max(1, min(workers, n/minChunk))
	if chunks == 1 {
		return fn(0, n)
	}
	size := (n + chunks - 1) / chunks
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		g.Go(func() error {
			return fn(lo, hi)
		})
	}
	return g.Wait()
}
