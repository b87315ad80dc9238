package robustboost

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool reconstructs the NewPool/AddTask/WaitAll contract ebl/tree.go's
// TheBestSplit calls against (that pool's own implementation was never
// part of the retrieved files). Rebuilt here on errgroup.Group, the
// fan-out primitive this module's distributed builder already needs for
// RobustDistColMaker, rather than hand-rolling a second worker-pool type
// for the single-process path.
type Pool struct {
	g   *errgroup.Group
	sem chan struct{}
}

// NewPool returns a pool that runs at most n tasks concurrently.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	g, _ := errgroup.WithContext(context.Background())
	return &Pool{g: g, sem: make(chan struct{}, n)}
}

// AddTask submits a unit of work to run on the pool, blocking the caller
// only once n tasks are already in flight.
func (p *Pool) AddTask(task func() error) {
	p.sem <- struct{}{}
	p.g.Go(func() error {
		defer func() { <-p.sem }()
		return task()
	})
}

// WaitAll blocks until every submitted task has returned, propagating the
// first error, if any.
func (p *Pool) WaitAll() error {
	return p.g.Wait()
}
