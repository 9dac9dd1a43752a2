package generator

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Runner is one independently configured pipeline.
type Runner interface {
	Run(ctx context.Context) error
}

// Batch runs several generators concurrently.
type Batch struct {
	runners []Runner
	limit   int
}

// NewBatch returns a batch of runners. A limit below 1 runs them all at once.
func NewBatch(limit int, runners ...Runner) *Batch {
	return &Batch{runners: runners, limit: limit}
}

// Add appends a runner.
func (b *Batch) Add(r Runner) { b.runners = append(b.runners, r) }

// Len returns the number of runners.
func (b *Batch) Len() int { return len(b.runners) }

// Run starts every runner and waits for all of them. A failing runner does
// not cancel the others; every failure is returned joined.
func (b *Batch) Run(ctx context.Context) error {
	errs := make([]error, len(b.runners))
	var g errgroup.Group
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}
	for i, r := range b.runners {
		g.Go(func() error {
			errs[i] = r.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
