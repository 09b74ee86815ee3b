package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool bounds how many candidate suppliers a single pipeline run loads at once.
// Candidates are independent and read-only, so order of completion does not matter;
// callers write results by index.
type Pool struct {
	size int
}

// NewPool creates a pool running at most size tasks concurrently (minimum 1).
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{size: size}
}

func (p *Pool) Size() int { return p.size }

// Run calls fn for every index in [0, n). The first error cancels the context
// handed to the remaining calls and is returned once all started calls return.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	return g.Wait()
}
