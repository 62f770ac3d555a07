package redis

import (
	"context"
	"encoding/json"
	"errors"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/repository"
)

var _ repository.OptionsRepository = (*OptionsRepo)(nil)

const optionsKey = "horde:options"

// OptionsRepo persists the user's generation options so a restart restores
// the last edited state. Options never expire.
type OptionsRepo struct {
	client RedisClient
}

func NewOptionsRepo(client RedisClient) *OptionsRepo {
	return &OptionsRepo{client: client}
}

func (r *OptionsRepo) Get(ctx context.Context) (*model.GenerationOptions, error) {
	data, err := r.client.Get(ctx, optionsKey)
	if err != nil {
		if errors.Is(err, ErrNil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var opts model.GenerationOptions
	if err := json.Unmarshal([]byte(data), &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (r *OptionsRepo) Store(ctx context.Context, opts *model.GenerationOptions) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, optionsKey, data, 0)
}
