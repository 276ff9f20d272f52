package anneal

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kuehlmak/kuehlmak/internal/kuehlmak"
)

// Progress is one message emitted onto a Pool's bounded channel: either an
// in-flight Step from a worker, or that worker's final result.
type Progress struct {
	WorkerID int
	Step     Step
	Final    bool
	Best     *kuehlmak.Layout
	BestScore *kuehlmak.Scores
}

// PoolConfig configures a bounded-concurrency pool of independent
// annealing runs (spec.md section 5, "Scheduling model"), generalized to
// the original kuehlmak CLI's anneal_command split between --jobs/-j
// (worker concurrency) and --number/-n (how many distinct layouts to
// produce per invocation, original_source/src/main.rs:140-253).
type PoolConfig struct {
	// Workers bounds how many runs execute concurrently; defaults to
	// runtime.NumCPU() when <= 0.
	Workers int
	// Runs is the total number of independent annealing runs to perform,
	// queued and drained through the Workers-sized concurrency bound;
	// defaults to Workers when <= 0 (one run per worker, the prior
	// behavior).
	Runs    int
	Steps   int
	Shuffle bool
	// QueueSize bounds the progress channel; 0 defaults to Workers.
	QueueSize int
}

// RunPool runs Runs independent Anneal runs through a Workers-sized
// concurrency bound, each seeded distinctly from baseSeed, and streams
// their Steps onto a bounded channel the caller drains. Model and stats
// are read concurrently without synchronization since Model is immutable
// after NewModel and TextStats implementations are expected to be
// immutable too (spec.md section 5, "Shared state").
//
// The channel is closed after every run finishes and the dispatcher has
// joined them, matching spec.md section 5's drain-then-join ordering.
// Grounded on the teacher's steepestDescentParallel worker-pool shape
// (internal/keycraft/bls.go), replacing its WaitGroup+close-in-goroutine
// pattern with errgroup for error propagation, and generalized from a
// fixed worker-per-run pool to the original kuehlmak CLI's bounded
// thread-pool-over-a-job-queue shape (its threadpool crate + mpsc
// channel, original_source/src/main.rs:212-253) via a buffered-channel semaphore
// instead. logger may be nil to disable trajectory logging.
func RunPool(ctx context.Context, model *kuehlmak.Model, stats kuehlmak.TextStats, initial *kuehlmak.Layout, cfg PoolConfig, baseSeed uint64, logger *Logger) (<-chan Progress, *errgroup.Group) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	runs := cfg.Runs
	if runs <= 0 {
		runs = workers
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = workers
	}

	progress := make(chan Progress, queueSize)
	g, gctx := errgroup.WithContext(ctx)

	// sem bounds how many of the Runs goroutines actually execute at
	// once; every run is dispatched via g.Go up front (so g.Wait is
	// immediately safe to call), but each blocks on sem until a worker
	// slot is free, mirroring the original CLI's bounded thread-pool
	// queue (original_source/src/main.rs:236-246).
	sem := make(chan struct{}, workers)

	for w := range runs {
		w := w
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			seed := baseSeed + uint64(w)*0x9e3779b97f4a7c15
			run, err := New(model, stats, initial, cfg.Shuffle, cfg.Steps, seed)
			if err != nil {
				return err
			}

			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				step, ok, err := run.Next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				logger.LogStep(w, step)

				select {
				case progress <- Progress{WorkerID: w, Step: step}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}

			best, bestScores := run.Best()
			logger.LogFinal(w, best, bestScores)
			select {
			case progress <- Progress{WorkerID: w, Final: true, Best: best, BestScore: bestScores}:
			case <-gctx.Done():
				return gctx.Err()
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(progress)
	}()

	return progress, g
}
