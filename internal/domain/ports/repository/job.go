package repository

import (
	"context"

	"horde-image-client/internal/domain/model"
)

// JobRepository tracks the single in-flight generation job and its cached
// metadata. The single-slot invariant lives here: Put fails while a job is
// already stored.
type JobRepository interface {
	// Current returns the in-flight job, or domain.ErrNotFound.
	Current(ctx context.Context) (*model.JobInProgress, error)

	// Put stores the job; returns domain.ErrJobInFlight when the slot is
	// already occupied by a different request.
	Put(ctx context.Context, job *model.JobInProgress) error

	// Update overwrites the stored job in place (used for the fetch-attempt
	// counter); returns domain.ErrNotFound when the slot is empty.
	Update(ctx context.Context, job *model.JobInProgress) error

	// Delete clears the slot. Deleting an empty slot is not an error.
	Delete(ctx context.Context, requestID string) error

	StoreMetadata(ctx context.Context, meta *model.JobMetadata) error

	// Metadata returns the cached dimensions for a request, or
	// domain.ErrNotFound.
	Metadata(ctx context.Context, requestID string) (*model.JobMetadata, error)
}
