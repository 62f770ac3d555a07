package usecase

import (
	"context"
	"errors"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

var _ OptionsUseCase = (*optionsUC)(nil)

// OptionsUseCase exposes the persisted generation options and the cost
// estimate the UI recomputes on every edit.
type OptionsUseCase interface {
	// Get returns the stored options, falling back to the service defaults
	// for a fresh client.
	Get(ctx context.Context) (*model.GenerationOptions, error)

	// Update validates and persists edited options, returning the new kudos
	// estimate.
	Update(ctx context.Context, opts *model.GenerationOptions) (float64, error)

	// Estimate returns the kudos estimate for the stored options.
	Estimate(ctx context.Context) (float64, error)
}

type optionsUC struct {
	repo repository.OptionsRepository
	log  *zerolog.Logger
}

func NewOptionsUseCase(repo repository.OptionsRepository, logger *zerolog.Logger) *optionsUC {
	return &optionsUC{repo: repo, log: logger}
}

func (u *optionsUC) Get(ctx context.Context) (*model.GenerationOptions, error) {
	opts, err := u.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return model.DefaultGenerationOptions(), nil
		}
		return nil, err
	}
	return opts, nil
}

func (u *optionsUC) Update(ctx context.Context, opts *model.GenerationOptions) (float64, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if err := u.repo.Store(ctx, opts); err != nil {
		return 0, err
	}
	return model.EstimateKudos(opts), nil
}

func (u *optionsUC) Estimate(ctx context.Context) (float64, error) {
	opts, err := u.Get(ctx)
	if err != nil {
		return 0, err
	}
	return model.EstimateKudos(opts), nil
}
