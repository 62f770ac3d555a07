package adapter

import (
	"context"
	"fmt"

	"horde-image-client/internal/domain/model"
)

// APIError is the uniform failure shape of the horde API: every failed call
// carries a message plus the HTTP status code. Transport failures use code 0.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("horde api error (code %d): %s", e.Code, e.Message)
}

// RequestStatusFull is the full status payload returned once a job is done.
type RequestStatusFull struct {
	Generations []model.Generation `json:"generations"`
	Kudos       float64            `json:"kudos"`
}

// HordeAPIAdapter is the port for the remote generation service.
type HordeAPIAdapter interface {
	// CurrentUser looks up the account behind the configured API key.
	CurrentUser(ctx context.Context) (*model.UserDetails, error)

	// ListModels returns the models currently served by workers.
	ListModels(ctx context.Context) ([]model.ActiveModel, error)

	// GenerateImage submits a job and returns its tracking record.
	GenerateImage(ctx context.Context, opts *model.GenerationOptions) (*model.JobInProgress, error)

	// CheckStatus is the cheap polling call; it never returns generations.
	CheckStatus(ctx context.Context, requestID string) (*model.StatusCheck, error)

	// CancelJob aborts a queued or running job.
	CancelJob(ctx context.Context, requestID string) error

	// FetchResult retrieves the generation list for a finished job.
	FetchResult(ctx context.Context, requestID string) (*RequestStatusFull, error)

	// DownloadImage fetches the raw image bytes behind a generation's URL.
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}
