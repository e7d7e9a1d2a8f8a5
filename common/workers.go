package common

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool runs bulk-synchronous fork-join steps over a fixed number of
// workers. Each call to For, Sum or Sum2 splits [0, n) into contiguous
// ranges, runs one goroutine per range and returns after all of them
// have finished, so consecutive calls never overlap.
type Pool struct {
	workers int
}

// NewPool returns a pool of the given size. Non-positive sizes fall back
// to runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Chunk returns the half-open range owned by worker id when [0, n) is
// split across the pool. Ranges are contiguous, ordered by id, and may be
// empty when n < Workers().
func (p *Pool) Chunk(id, n int) (start, end int) {
	start = id * n / p.workers
	end = (id + 1) * n / p.workers
	return
}

// For runs body over every worker range of [0, n). Bodies must only write
// indexes inside their own range.
func (p *Pool) For(n int, body func(start, end int)) {
	if p.workers == 1 || n < p.workers {
		body(0, n)
		return
	}
	var g errgroup.Group
	for id := 0; id < p.workers; id++ {
		id := id
		start, end := p.Chunk(id, n)
		g.Go(func() error {
			body(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// Go runs body once per worker id and waits for all of them. It is used
// when the work split is not a plain index range.
func (p *Pool) Go(body func(id int) error) error {
	var g errgroup.Group
	for id := 0; id < p.workers; id++ {
		id := id
		g.Go(func() error {
			return body(id)
		})
	}
	return g.Wait()
}

// Sum reduces body over the worker ranges of [0, n). Partials are added
// in worker order, so the result is reproducible for a fixed pool size.
func (p *Pool) Sum(n int, body func(start, end int) float64) float64 {
	if p.workers == 1 || n < p.workers {
		return body(0, n)
	}
	partial := make([]float64, p.workers)
	var g errgroup.Group
	for id := 0; id < p.workers; id++ {
		id := id
		start, end := p.Chunk(id, n)
		g.Go(func() error {
			partial[id] = body(start, end)
			return nil
		})
	}
	_ = g.Wait()

	sum := 0.0
	for _, v := range partial {
		sum += v
	}
	return sum
}

// Sum2 is Sum for two reductions computed in the same pass.
func (p *Pool) Sum2(n int, body func(start, end int) (float64, float64)) (float64, float64) {
	if p.workers == 1 || n < p.workers {
		return body(0, n)
	}
	type pair struct{ a, b float64 }
	partial := make([]pair, p.workers)
	var g errgroup.Group
	for id := 0; id < p.workers; id++ {
		id := id
		start, end := p.Chunk(id, n)
		g.Go(func() error {
			a, b := body(start, end)
			partial[id] = pair{a, b}
			return nil
		})
	}
	_ = g.Wait()

	var sa, sb float64
	for _, v := range partial {
		sa += v.a
		sb += v.b
	}
	return sa, sb
}
