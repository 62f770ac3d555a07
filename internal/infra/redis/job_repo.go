package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

const currentJobKey = "horde:job:current"

// JobRepo stores the single in-flight job plus per-request metadata. The
// single-slot invariant is enforced with SETNX on the job key, so two
// submissions racing at the storage layer cannot both win.
type JobRepo struct {
	client RedisClient
}

func NewJobRepo(client RedisClient) *JobRepo {
	return &JobRepo{client: client}
}

func metaKey(requestID string) string {
	return fmt.Sprintf("horde:jobmeta:%s", requestID)
}

func (r *JobRepo) Current(ctx context.Context) (*model.JobInProgress, error) {
	data, err := r.client.Get(ctx, currentJobKey)
	if err != nil {
		if errors.Is(err, ErrNil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var job model.JobInProgress
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepo) Put(ctx context.Context, job *model.JobInProgress) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, currentJobKey, data, 0)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrJobInFlight
	}
	return nil
}

func (r *JobRepo) Update(ctx context.Context, job *model.JobInProgress) error {
	if _, err := r.Current(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, currentJobKey, data, 0)
}

func (r *JobRepo) Delete(ctx context.Context, requestID string) error {
	return r.client.Del(ctx, currentJobKey, metaKey(requestID))
}

func (r *JobRepo) StoreMetadata(ctx context.Context, meta *model.JobMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, metaKey(meta.RequestID), data, 0)
}

func (r *JobRepo) Metadata(ctx context.Context, requestID string) (*model.JobMetadata, error) {
	data, err := r.client.Get(ctx, metaKey(requestID))
	if err != nil {
		if errors.Is(err, ErrNil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var meta model.JobMetadata
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
