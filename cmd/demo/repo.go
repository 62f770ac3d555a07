package main

import (
	"context"
	"sync"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/repository"
)

// In-process stand-ins for the redis repositories; the demo has no state
// worth surviving a restart.

var _ repository.JobRepository = (*memJobRepo)(nil)

type memJobRepo struct {
	mu   sync.Mutex
	job  *model.JobInProgress
	meta map[string]*model.JobMetadata
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{meta: make(map[string]*model.JobMetadata)}
}

func (m *memJobRepo) Current(ctx context.Context) (*model.JobInProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.job
	return &cp, nil
}

func (m *memJobRepo) Put(ctx context.Context, job *model.JobInProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job != nil {
		return domain.ErrJobInFlight
	}
	cp := *job
	m.job = &cp
	return nil
}

func (m *memJobRepo) Update(ctx context.Context, job *model.JobInProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job == nil {
		return domain.ErrNotFound
	}
	cp := *job
	m.job = &cp
	return nil
}

func (m *memJobRepo) Delete(ctx context.Context, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.job = nil
	delete(m.meta, requestID)
	return nil
}

func (m *memJobRepo) StoreMetadata(ctx context.Context, meta *model.JobMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *meta
	m.meta[meta.RequestID] = &cp
	return nil
}

func (m *memJobRepo) Metadata(ctx context.Context, requestID string) (*model.JobMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.meta[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *meta
	return &cp, nil
}

var _ repository.OptionsRepository = (memOptions{})

// memOptions serves the submitted options back to the materializer.
type memOptions struct {
	opts *model.GenerationOptions
}

func (m memOptions) Get(context.Context) (*model.GenerationOptions, error) {
	if m.opts == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.opts
	return &cp, nil
}

func (m memOptions) Store(context.Context, *model.GenerationOptions) error { return nil }
