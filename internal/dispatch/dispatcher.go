package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/tqbui/vqagen/internal/credential"
	"github.com/tqbui/vqagen/internal/domain"
	"github.com/tqbui/vqagen/internal/results"
)

// Options holds the tunable dispatch parameters.
type Options struct {
	Workers        int
	FetchTimeout   time.Duration
	FailureCeiling int
	Backoff        Window
	Courtesy       Window
	ShutdownWait   time.Duration
	QuotaPhrases   []string
}

// withDefaults fills zero values with the defaults observed in
// production use of the pipeline.
func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 3
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 5 * time.Second
	}
	if o.FailureCeiling <= 0 {
		o.FailureCeiling = 100
	}
	if o.Backoff == (Window{}) {
		o.Backoff = Window{Min: 4 * time.Second, Max: 8 * time.Second}
	}
	if o.Courtesy == (Window{}) {
		o.Courtesy = Window{Min: 50 * time.Millisecond, Max: 100 * time.Millisecond}
	}
	if o.ShutdownWait <= 0 {
		o.ShutdownWait = 2 * time.Second
	}
	if len(o.QuotaPhrases) == 0 {
		o.QuotaPhrases = domain.DefaultQuotaPhrases
	}
	return o
}

// Summary is the aggregate outcome of a run.
type Summary struct {
	Seeded      int
	Skipped     int
	Completed   int
	Interrupted bool
}

// Dispatcher seeds the work queue from the job list, runs N workers
// against it, and performs cooperative shutdown via stop sentinels.
type Dispatcher struct {
	runID   string
	queue   *Queue
	pool    *credential.Pool
	store   *results.Store
	counter *Counter
	seeded  int
	skipped int
	opts    Options
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher sharing one queue, credential pool,
// result store, and progress counter across all workers.
func NewDispatcher(pool *credential.Pool, store *results.Store, opts Options, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		runID:   uuid.NewString(),
		queue:   NewQueue(),
		pool:    pool,
		store:   store,
		counter: &Counter{},
		opts:    opts.withDefaults(),
		logger:  logger,
	}
}

// Counter exposes the shared completed-job counter, for observability.
func (d *Dispatcher) Counter() *Counter {
	return d.counter
}

// Progress reports the current run counters: completed so far, jobs
// skipped at seeding, jobs seeded, and items still pending in the queue.
func (d *Dispatcher) Progress() (completed, skipped, seeded, pending int) {
	return d.counter.Get(), d.skipped, d.seeded, d.queue.Outstanding()
}

// Run seeds the queue, starts the workers, and blocks until the queue
// drains or ctx is cancelled. It then issues one stop sentinel per
// worker and joins each worker with a bounded wait.
func (d *Dispatcher) Run(ctx context.Context, jobs []domain.Job) Summary {
	d.seed(jobs)

	d.logger.Info("Starting workers",
		slog.Int("workers", d.opts.Workers),
		slog.Int("seeded", d.seeded),
		slog.Int("skipped", d.skipped),
	)

	workerDone := make([]chan struct{}, d.opts.Workers)
	for i := 0; i < d.opts.Workers; i++ {
		wk := &worker{
			name:    fmt.Sprintf("%s-%d", d.runID, i),
			queue:   d.queue,
			pool:    d.pool,
			store:   d.store,
			counter: d.counter,
			opts:    d.opts,
			logger:  d.logger,
		}
		done := make(chan struct{})
		workerDone[i] = done
		go func() {
			defer close(done)
			wk.run(ctx)
		}()
	}

	joinDone := make(chan struct{})
	go func() {
		d.queue.Join()
		close(joinDone)
	}()

	interrupted := false
	select {
	case <-joinDone:
		d.logger.Info("All requests have been processed")
	case <-ctx.Done():
		interrupted = true
		d.logger.Info("Interrupt received, stopping workers")
	}

	// One stop sentinel per worker; extras left behind by workers that
	// already exited on their own are harmless. After an interrupt the
	// sentinels go to the front of the queue so workers stop without
	// draining the remaining jobs first.
	for i := 0; i < d.opts.Workers; i++ {
		if interrupted {
			d.queue.PutFront(Sentinel())
		} else {
			d.queue.Put(Sentinel())
		}
	}

	for i, done := range workerDone {
		select {
		case <-done:
		case <-time.After(d.opts.ShutdownWait):
			d.logger.Warn("Worker did not stop within the shutdown wait",
				slog.String("worker", fmt.Sprintf("%s-%d", d.runID, i)),
				slog.Duration("shutdown_wait", d.opts.ShutdownWait),
			)
		}
	}

	summary := Summary{
		Seeded:      d.seeded,
		Skipped:     d.skipped,
		Completed:   d.counter.Get(),
		Interrupted: interrupted,
	}

	d.logger.Info("Processing completed",
		slog.Int("completed", summary.Completed),
		slog.Int("skipped", summary.Skipped),
		slog.Bool("interrupted", summary.Interrupted),
	)

	return summary
}

// seed shuffles the job list and enqueues every job without an existing
// result. Shuffling smooths load across workers and avoids correlated
// bursts against one credential.
func (d *Dispatcher) seed(jobs []domain.Job) {
	shuffled := make([]domain.Job, len(jobs))
	copy(shuffled, jobs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for i := range shuffled {
		if d.store.Exists(shuffled[i].ID) {
			d.skipped++
			continue
		}
		d.queue.Put(Item{Job: &shuffled[i]})
		d.seeded++
	}

	d.logger.Info("Work queue seeded",
		slog.Int("total", len(jobs)),
		slog.Int("seeded", d.seeded),
		slog.Int("skipped", d.skipped),
	)
}
