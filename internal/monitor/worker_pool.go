package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// CheckFunc handles one index. It must honour ctx for its own timeouts.
type CheckFunc func(ctx context.Context, index int) CheckOutcome

// WorkerPool runs CheckFuncs for a batch of indices with bounded concurrency.
type WorkerPool struct {
	limit  int
	logger zerolog.Logger
}

// NewWorkerPool creates a pool that runs at most limit tasks at once.
func NewWorkerPool(limit int, logger zerolog.Logger) *WorkerPool {
	if limit < 1 {
		limit = 1
	}
	return &WorkerPool{
		limit:  limit,
		logger: logger.With().Str("component", "WorkerPool").Logger(),
	}
}

// Limit returns the concurrency bound.
func (p *WorkerPool) Limit() int {
	return p.limit
}

// RunBatch runs fn once per distinct index and blocks until every result is in.
// The returned map has one entry per distinct input index. A panicking fn is
// reported as an error outcome for its index. Once ctx is cancelled no new
// index is started; those indices get an ErrCheckSkipped outcome while tasks
// already running finish under their own timeouts.
func (p *WorkerPool) RunBatch(ctx context.Context, indices []int, fn CheckFunc) map[int]CheckOutcome {
	results := make(map[int]CheckOutcome, len(indices))
	var mu sync.Mutex
	store := func(outcome CheckOutcome) {
		mu.Lock()
		results[outcome.Index] = outcome
		mu.Unlock()
	}

	taskCtx := context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(p.limit)

	seen := make(map[int]struct{}, len(indices))
	for _, index := range indices {
		if _, dup := seen[index]; dup {
			continue
		}
		seen[index] = struct{}{}

		if ctx.Err() != nil {
			store(Failed(index, errorwrapper.ErrCheckSkipped))
			continue
		}

		index := index
		g.Go(func() error {
			// Cancellation may have arrived while this task waited for a slot.
			if ctx.Err() != nil {
				store(Failed(index, errorwrapper.ErrCheckSkipped))
				return nil
			}
			store(p.runOne(taskCtx, index, fn))
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (p *WorkerPool) runOne(ctx context.Context, index int, fn CheckFunc) (outcome CheckOutcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Int("index", index).Interface("panic", r).Msg("Check task panicked")
			outcome = Failed(index, fmt.Errorf("check task panicked: %v", r))
		}
	}()

	outcome = fn(ctx, index)
	outcome.Index = index
	return outcome
}
