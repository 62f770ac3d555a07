package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/adapter"
	"horde-image-client/internal/domain/ports/repository"
	"horde-image-client/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

var _ MaterializeUseCase = (*materializeUC)(nil)

// MaterializeUseCase turns a done job into a displayable Result: fetch the
// generation list, download the first generation's image, combine it with the
// cached dimensions and the server-reported attributes, record history, and
// publish into the result slot.
type MaterializeUseCase interface {
	Materialize(ctx context.Context, job *model.JobInProgress) (*model.Result, error)
}

type materializeUC struct {
	api     adapter.HordeAPIAdapter
	jobs    repository.JobRepository
	options repository.OptionsRepository
	history repository.HistoryRepository
	tm      repository.TransactionManager
	results *ResultSlot
	log     *zerolog.Logger
}

func NewMaterializeUseCase(
	api adapter.HordeAPIAdapter,
	jobs repository.JobRepository,
	options repository.OptionsRepository,
	history repository.HistoryRepository,
	tm repository.TransactionManager,
	results *ResultSlot,
	logger *zerolog.Logger,
) *materializeUC {
	return &materializeUC{
		api:     api,
		jobs:    jobs,
		options: options,
		history: history,
		tm:      tm,
		results: results,
		log:     logger,
	}
}

func (u *materializeUC) Materialize(ctx context.Context, job *model.JobInProgress) (*model.Result, error) {
	defer logging.TraceDuration(u.log, "MaterializeUC.Materialize")()

	full, err := u.api.FetchResult(ctx, job.RequestID)
	if err != nil {
		return nil, err
	}
	if len(full.Generations) == 0 {
		return nil, domain.ErrEmptyGeneration
	}
	// Multi-image responses are only partially handled: the first generation
	// is retained, the rest are ignored.
	gen := full.Generations[0]

	img, err := u.api.DownloadImage(ctx, gen.IMG)
	if err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, domain.ErrEmptyImage
	}

	res := &model.Result{
		ID:         gen.ID,
		RequestID:  job.RequestID,
		Image:      img,
		WorkerID:   gen.WorkerID,
		WorkerName: gen.WorkerName,
		Model:      gen.Model,
		Seed:       gen.Seed,
		Censored:   gen.Censored,
		Kudos:      full.Kudos,
		CreatedAt:  time.Now(),
	}

	// Dimensions were cached at submit time; the result payload does not
	// repeat them.
	meta, err := u.jobs.Metadata(ctx, job.RequestID)
	if err != nil {
		u.log.Warn().Err(err).Str("request_id", job.RequestID).Msg("job metadata missing, dimensions unknown")
	} else {
		res.Width = meta.Width
		res.Height = meta.Height
	}

	if err := u.recordHistory(ctx, res); err != nil {
		// History is supplementary; a write failure must not lose the image.
		u.log.Error().Err(err).Str("request_id", job.RequestID).Msg("could not record generation history")
	}

	u.results.Publish(res)
	u.log.Info().Str("request_id", job.RequestID).Str("generation_id", gen.ID).
		Int("bytes", len(img)).Float64("kudos", res.Kudos).Msg("result materialized")
	return res, nil
}

func (u *materializeUC) recordHistory(ctx context.Context, res *model.Result) error {
	if u.history == nil || u.tm == nil {
		return nil
	}
	entry := &model.HistoryEntry{
		RequestID:  res.RequestID,
		Model:      res.Model,
		Seed:       res.Seed,
		Width:      res.Width,
		Height:     res.Height,
		WorkerID:   res.WorkerID,
		WorkerName: res.WorkerName,
		Censored:   res.Censored,
		Kudos:      res.Kudos,
		CreatedAt:  res.CreatedAt,
	}
	// Prompt and sampler settings come from the stored form state; best
	// effort, the form may have been edited while the job ran.
	if opts, err := u.options.Get(ctx); err == nil {
		entry.Prompt = opts.Prompt
		entry.Sampler = opts.Sampler
		entry.Steps = opts.Steps
	} else if !errors.Is(err, domain.ErrNotFound) {
		u.log.Warn().Err(err).Msg("could not read options for history entry")
	}

	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return u.history.Save(ctx, tx, entry)
	})
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
