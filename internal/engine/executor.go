package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gorandtest/domain/core"
)

// DefaultFlushEvery is how many partitions a worker scores before handing its
// partial sums to the merger.
const DefaultFlushEvery = 256

// Tally is a partial or final count of scored partitions.
type Tally struct {
	Evaluated int
	Hits      int
}

// Add merges two tallies.
func (t Tally) Add(o Tally) Tally {
	return Tally{Evaluated: t.Evaluated + o.Evaluated, Hits: t.Hits + o.Hits}
}

// ProgressFunc receives the merged tally after every flush. It is only ever
// called from the merging goroutine.
type ProgressFunc func(Tally)

// ProduceFunc feeds partitions into out until done. It must not close out.
type ProduceFunc func(ctx context.Context, out chan<- []int) error

// Executor runs an Evaluator over a stream of partitions with a fixed pool of workers
type Executor struct {
	evaluator  *Evaluator
	workers    int
	flushEvery int
	progress   ProgressFunc
}

// NewExecutor creates an executor with the given number of workers, which must
// already be normalized.
func NewExecutor(evaluator *Evaluator, workers int, progress ProgressFunc) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		evaluator:  evaluator,
		workers:    workers,
		flushEvery: DefaultFlushEvery,
		progress:   progress,
	}
}

// Execute starts produce and the worker pool and returns the merged tally.
// The first worker failure cancels the producer and every other worker; no
// partial tally is returned in that case.
func (x *Executor) Execute(ctx context.Context, produce ProduceFunc) (Tally, error) {
	g, gctx := errgroup.WithContext(ctx)
	partitions := make(chan []int, x.workers*4)
	tallies := make(chan Tally, x.workers)

	g.Go(func() error {
		defer close(partitions)
		return produce(gctx, partitions)
	})

	for i := 0; i < x.workers; i++ {
		g.Go(func() error {
			return x.work(gctx, partitions, tallies)
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(tallies)
	}()

	// Single owner of the total.
	var total Tally
	for partial := range tallies {
		total = total.Add(partial)
		if x.progress != nil {
			x.progress(total)
		}
	}

	if err := <-done; err != nil {
		return Tally{}, err
	}
	return total, nil
}

func (x *Executor) work(ctx context.Context, partitions <-chan []int, tallies chan<- Tally) error {
	var local Tally
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p, ok := <-partitions:
			if !ok {
				if local.Evaluated > 0 {
					tallies <- local
				}
				return nil
			}
			hit, err := x.evaluate(p)
			if err != nil {
				return core.NewComputationError(err)
			}
			local.Evaluated++
			if hit {
				local.Hits++
			}
			if local.Evaluated >= x.flushEvery {
				tallies <- local
				local = Tally{}
			}
		}
	}
}

func (x *Executor) evaluate(p []int) (hit bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while evaluating partition %v: %v", p, r)
		}
	}()
	return x.evaluator.Evaluate(p)
}
