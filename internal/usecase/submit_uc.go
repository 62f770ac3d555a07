package usecase

import (
	"context"
	"errors"
	"time"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/adapter"
	"horde-image-client/internal/domain/ports/repository"
	"horde-image-client/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ SubmitUseCase = (*submitUC)(nil)

// SubmitUseCase owns the submission side of the job lifecycle: validate,
// enforce the single-in-flight invariant, submit, persist tracking state.
type SubmitUseCase interface {
	// Submit validates opts and submits a generation job. It fails fast with
	// domain.ErrInvalidOptions or domain.ErrJobInFlight before any network
	// call is made.
	Submit(ctx context.Context, opts *model.GenerationOptions) (*model.JobInProgress, error)

	// Cancel aborts the in-flight job remotely and clears the local record.
	Cancel(ctx context.Context) error

	// Current returns the in-flight job, or domain.ErrNotFound.
	Current(ctx context.Context) (*model.JobInProgress, error)
}

type submitUC struct {
	jobs    repository.JobRepository
	api     adapter.HordeAPIAdapter
	results *ResultSlot
	log     *zerolog.Logger
}

func NewSubmitUseCase(jobs repository.JobRepository, api adapter.HordeAPIAdapter, results *ResultSlot, logger *zerolog.Logger) *submitUC {
	return &submitUC{jobs: jobs, api: api, results: results, log: logger}
}

func (u *submitUC) Submit(ctx context.Context, opts *model.GenerationOptions) (*model.JobInProgress, error) {
	defer logging.TraceDuration(u.log, "SubmitUC.Submit")()

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if _, err := u.jobs.Current(ctx); err == nil {
		return nil, domain.ErrJobInFlight
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// The previous result's binary handle is freed before a new submission
	// is accepted.
	u.results.Release()

	job, err := u.api.GenerateImage(ctx, opts)
	if err != nil {
		return nil, err
	}
	job.SubmittedAt = time.Now()

	if err := u.jobs.Put(ctx, job); err != nil {
		if errors.Is(err, domain.ErrJobInFlight) {
			// Lost a race at the storage layer; abort the remote job so it
			// does not run unobserved.
			if cErr := u.api.CancelJob(ctx, job.RequestID); cErr != nil {
				u.log.Warn().Err(cErr).Str("request_id", job.RequestID).Msg("could not cancel orphaned job")
			}
		}
		return nil, err
	}

	// Width/height are captured now because later status responses omit them.
	meta := &model.JobMetadata{RequestID: job.RequestID, Width: opts.Width, Height: opts.Height}
	if err := u.jobs.StoreMetadata(ctx, meta); err != nil {
		u.log.Warn().Err(err).Str("request_id", job.RequestID).Msg("could not store job metadata")
	}

	u.log.Info().Str("request_id", job.RequestID).Float64("kudos", job.Kudos).Msg("job submitted")
	return job, nil
}

func (u *submitUC) Cancel(ctx context.Context) error {
	defer logging.TraceDuration(u.log, "SubmitUC.Cancel")()

	job, err := u.jobs.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNoJobInFlight
		}
		return err
	}
	if err := u.api.CancelJob(ctx, job.RequestID); err != nil {
		return err
	}
	if err := u.jobs.Delete(ctx, job.RequestID); err != nil {
		return err
	}
	u.log.Info().Str("request_id", job.RequestID).Msg("job cancelled by user")
	return nil
}

func (u *submitUC) Current(ctx context.Context) (*model.JobInProgress, error) {
	return u.jobs.Current(ctx)
}
