package dispatch

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tqbui/vqagen/internal/credential"
	"github.com/tqbui/vqagen/internal/domain"
	"github.com/tqbui/vqagen/internal/results"
)

// Window is a half-open randomized delay range [Min, Max).
type Window struct {
	Min time.Duration
	Max time.Duration
}

// Jitter returns a random duration in [Min, Max).
func (w Window) Jitter() time.Duration {
	if w.Max <= w.Min {
		return w.Min
	}
	return w.Min + rand.N(w.Max-w.Min)
}

// worker pulls jobs from the shared queue, invokes the API handler,
// persists results, and applies the retry/backoff policy. Each worker
// tracks its own consecutive-failure count; quota failures never count
// toward it.
type worker struct {
	name    string
	queue   *Queue
	pool    *credential.Pool
	store   *results.Store
	counter *Counter
	opts    Options
	logger  *slog.Logger
}

func (w *worker) run(ctx context.Context) {
	handler, err := w.pool.Handler()
	if err != nil {
		w.logger.Error("Failed to create API handler, worker not starting",
			slog.String("worker", w.name),
			slog.String("error", err.Error()),
		)
		return
	}

	w.logger.Info("Worker started",
		slog.String("worker", w.name),
	)

	consecutiveErrors := 0

	for {
		item, ok := w.queue.Get(w.opts.FetchTimeout)
		if !ok {
			w.logger.Info("Worker exiting - no more tasks in queue",
				slog.String("worker", w.name),
			)
			return
		}

		if item.IsSentinel() {
			w.logger.Info("Worker received stop signal",
				slog.String("worker", w.name),
			)
			w.queue.Done()
			return
		}

		job := item.Job

		// Another worker or a previous run may have completed this job
		// after it was enqueued.
		if w.store.Exists(job.ID) {
			w.logger.Info("Skipping job - response already exists",
				slog.String("worker", w.name),
				slog.String("job_id", job.ID),
			)
			w.queue.Done()
			continue
		}

		if err := w.process(ctx, handler, job); err != nil {
			w.logger.Warn("Job attempt failed",
				slog.String("worker", w.name),
				slog.String("job_id", job.ID),
				slog.String("error", err.Error()),
			)

			if domain.IsQuotaError(err, w.opts.QuotaPhrases) {
				// The active credential is exhausted. Mint a handler
				// from the next key in rotation and retry the job.
				w.logger.Warn("API quota exceeded, rotating credential",
					slog.String("worker", w.name),
					slog.String("job_id", job.ID),
				)
				if fresh, herr := w.pool.Handler(); herr != nil {
					w.logger.Error("Failed to create replacement handler, keeping current one",
						slog.String("worker", w.name),
						slog.String("error", herr.Error()),
					)
				} else {
					handler = fresh
				}

				// Re-put before acknowledging the failed attempt so the
				// queue's pending count never reaches zero mid-retry.
				w.queue.Put(item)
				w.queue.Done()
			} else {
				consecutiveErrors++
				if consecutiveErrors >= w.opts.FailureCeiling {
					w.logger.Error("Worker stopping after consecutive errors, dropping job",
						slog.String("worker", w.name),
						slog.String("job_id", job.ID),
						slog.Int("consecutive_errors", consecutiveErrors),
					)
					w.queue.Done()
					return
				}

				w.queue.Put(item)
				w.queue.Done()
			}

			time.Sleep(w.opts.Backoff.Jitter())
		} else {
			consecutiveErrors = 0
			completed := w.counter.Increment()
			w.logger.Info("Job processed",
				slog.String("worker", w.name),
				slog.String("job_id", job.ID),
				slog.Int("completed", completed),
			)
			w.queue.Done()
		}

		// Small delay between requests to avoid hammering the API,
		// independent of the error backoff above.
		time.Sleep(w.opts.Courtesy.Jitter())
	}
}

// process performs one attempt: generate from the image and prompt,
// then persist the result. Any failure here is retryable.
func (w *worker) process(ctx context.Context, handler credential.Generator, job *domain.Job) error {
	response, err := handler.Generate(ctx, job.ImagePath, job.Prompt)
	if err != nil {
		return err
	}
	return w.store.Write(domain.NewResult(job, response, handler.ModelName()))
}
