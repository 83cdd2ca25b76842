// Package parallel splits index ranges across goroutines and joins them.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers is the number of chunks a range is split into.
func Workers() int {
	return runtime.GOMAXPROCS(0)
}

// For executes fn over [0, n) in contiguous chunks and waits for all of
// them. Ranges no larger than minChunk run on the calling goroutine.
func For(n, minChunk int, fn func(start, end int)) {
	_ = ForErr(n, minChunk, func(start, end int) error {
		fn(start, end)
		return nil
	})
}

// ForErr is For with error propagation. The first error is returned after
// every chunk has finished.
func ForErr(n, minChunk int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if minChunk < 1 {
		minChunk = 1
	}

	workers := Workers()
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if n <= minChunk || workers <= 1 {
		return fn(0, n)
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		s, e := start, end
		g.Go(func() error {
			return fn(s, e)
		})
	}
	return g.Wait()
}
