// File: internal/infra/sched/poll_worker.go
package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/adapter"
	"horde-image-client/internal/domain/ports/repository"
	"horde-image-client/internal/infra/metrics"
	"horde-image-client/internal/infra/worker"

	"github.com/rs/zerolog"
)

// PollWorker drives the in-flight job to a terminal outcome: one status check
// per tick until completion, failure, or impossibility. Ticks run strictly
// sequentially inside Run's goroutine; the job record is only ever mutated
// here or by explicit submission/cancellation actions.
type PollWorker struct {
	interval time.Duration
	fetchCap int

	jobs        repository.JobRepository
	api         adapter.HordeAPIAdapter
	materialize MaterializeFunc
	notifiers   []adapter.Notifier
	pool        *worker.Pool
	log         *zerolog.Logger

	mu   sync.Mutex
	job  *model.JobInProgress
	busy bool
}

// MaterializeFunc is the result-assembly hook invoked once a job reports done.
type MaterializeFunc func(ctx context.Context, job *model.JobInProgress) (*model.Result, error)

func NewPollWorker(
	interval time.Duration,
	fetchCap int,
	jobs repository.JobRepository,
	api adapter.HordeAPIAdapter,
	materialize MaterializeFunc,
	notifiers []adapter.Notifier,
	pool *worker.Pool,
	logger *zerolog.Logger,
) *PollWorker {
	if interval <= 0 {
		interval = time.Second
	}
	if fetchCap <= 0 {
		fetchCap = 5
	}
	plog := logger.With().Str("component", "PollWorker").Logger()
	return &PollWorker{
		interval:    interval,
		fetchCap:    fetchCap,
		jobs:        jobs,
		api:         api,
		materialize: materialize,
		notifiers:   notifiers,
		pool:        pool,
		log:         &plog,
	}
}

// Track hands a freshly submitted job to the loop so the next tick polls it
// without a repository round trip.
func (w *PollWorker) Track(job *model.JobInProgress) {
	w.mu.Lock()
	w.job = job
	w.mu.Unlock()
}

// Untrack drops the in-memory reference after an external cancellation.
func (w *PollWorker) Untrack() {
	w.mu.Lock()
	w.job = nil
	w.mu.Unlock()
}

// Busy reports whether a materialization is in progress.
func (w *PollWorker) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// Run polls until ctx is cancelled. A job persisted by a previous process is
// picked up on the first tick, which recovers polling after a restart.
func (w *PollWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting poll worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping poll worker")
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick performs one polling step. No-op when no job is in flight.
func (w *PollWorker) Tick(ctx context.Context) {
	job := w.resolveJob(ctx)
	if job == nil {
		return
	}

	status, err := w.api.CheckStatus(ctx, job.RequestID)
	if err != nil {
		// Transient: surface and retry on the next tick, no backoff.
		w.notifyError(ctx, err)
		return
	}

	switch {
	case !status.IsPossible:
		w.finishImpossible(ctx, job)
	case status.Done:
		w.finishDone(ctx, job)
	default:
		w.log.Debug().Str("request_id", job.RequestID).
			Int("queue_position", status.QueuePos).Int("wait_time", status.WaitTime).
			Msg("job still pending")
	}
}

// resolveJob prefers the in-memory reference and falls back to re-reading the
// persisted record, which recovers correctly after a process restart while a
// job was in flight.
func (w *PollWorker) resolveJob(ctx context.Context) *model.JobInProgress {
	w.mu.Lock()
	job := w.job
	w.mu.Unlock()
	if job != nil {
		return job
	}

	job, err := w.jobs.Current(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			w.log.Error().Err(err).Msg("could not read persisted job")
		}
		return nil
	}
	w.Track(job)
	w.log.Info().Str("request_id", job.RequestID).Msg("resumed polling persisted job")
	return job
}

// finishImpossible handles the terminal is_possible=false outcome: cancel
// remotely, delete the local record, surface the error.
func (w *PollWorker) finishImpossible(ctx context.Context, job *model.JobInProgress) {
	if err := w.api.CancelJob(ctx, job.RequestID); err != nil {
		w.log.Warn().Err(err).Str("request_id", job.RequestID).Msg("cancel of impossible job failed")
	}
	if err := w.jobs.Delete(ctx, job.RequestID); err != nil {
		w.log.Error().Err(err).Str("request_id", job.RequestID).Msg("could not delete job record")
	}
	w.Untrack()
	metrics.IncJobFinished("impossible")
	w.notify(ctx, adapter.Notice{
		Severity: adapter.SeverityError,
		Message:  fmt.Sprintf("request %s: %v", job.RequestID, domain.ErrJobImpossible),
	})
}

// finishDone materializes the result. On fetch failure the record is kept and
// the next tick retries, up to the configured attempt cap; then the job is
// abandoned with a remote cancel so the user is not stuck on a dead result.
func (w *PollWorker) finishDone(ctx context.Context, job *model.JobInProgress) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return
	}
	w.busy = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	res, err := w.materialize(ctx, job)
	if err != nil {
		w.notifyError(ctx, err)
		job.FetchAttempts++
		if job.FetchAttempts >= w.fetchCap {
			w.abandon(ctx, job)
			return
		}
		if uErr := w.jobs.Update(ctx, job); uErr != nil {
			w.log.Error().Err(uErr).Str("request_id", job.RequestID).Msg("could not persist fetch attempt count")
		}
		w.Track(job)
		return
	}

	if err := w.jobs.Delete(ctx, job.RequestID); err != nil {
		w.log.Error().Err(err).Str("request_id", job.RequestID).Msg("could not delete job record")
	}
	w.Untrack()
	metrics.IncJobFinished("completed")
	metrics.AddKudosSpent(res.Kudos)
	w.notify(ctx, adapter.Notice{
		Severity: adapter.SeverityInfo,
		Message:  fmt.Sprintf("generation %s finished (%.0f kudos)", job.RequestID, res.Kudos),
	})
}

func (w *PollWorker) abandon(ctx context.Context, job *model.JobInProgress) {
	if err := w.api.CancelJob(ctx, job.RequestID); err != nil {
		w.log.Warn().Err(err).Str("request_id", job.RequestID).Msg("cancel of abandoned job failed")
	}
	if err := w.jobs.Delete(ctx, job.RequestID); err != nil {
		w.log.Error().Err(err).Str("request_id", job.RequestID).Msg("could not delete job record")
	}
	w.Untrack()
	metrics.IncJobFinished("fetch_exhausted")
	w.notify(ctx, adapter.Notice{
		Severity: adapter.SeverityError,
		Message:  fmt.Sprintf("giving up on request %s: %v", job.RequestID, domain.ErrFetchExhausted),
	})
}

func (w *PollWorker) notifyError(ctx context.Context, err error) {
	notice := adapter.Notice{Severity: adapter.SeverityError, Message: err.Error()}
	var apiErr *adapter.APIError
	if errors.As(err, &apiErr) {
		notice.Code = apiErr.Code
		notice.Message = apiErr.Message
	}
	w.notify(ctx, notice)
}

// notify fans the notice out through the pool so a slow transport never
// blocks the tick. Falls back to synchronous delivery when the pool is full
// or absent.
func (w *PollWorker) notify(ctx context.Context, notice adapter.Notice) {
	for _, n := range w.notifiers {
		n := n
		if w.pool != nil {
			if err := w.pool.Submit(func(ctx context.Context) error {
				return n.Notify(ctx, notice)
			}); err == nil {
				continue
			}
		}
		if err := n.Notify(ctx, notice); err != nil {
			w.log.Warn().Err(err).Msg("notifier failed")
		}
	}
}
