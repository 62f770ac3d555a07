package repository

import (
	"context"

	"horde-image-client/internal/domain/model"
)

// OptionsRepository persists the user's generation options between sessions.
type OptionsRepository interface {
	// Get returns the stored options, or domain.ErrNotFound when the user
	// has never saved any.
	Get(ctx context.Context) (*model.GenerationOptions, error)
	Store(ctx context.Context, opts *model.GenerationOptions) error
}
