// File: internal/infra/adapters/horde/client.go
package horde

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"horde-image-client/internal/config"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/adapter"
	"horde-image-client/internal/infra/metrics"
)

var _ adapter.HordeAPIAdapter = (*Client)(nil)

// Client implements adapter.HordeAPIAdapter against the horde's REST API.
type Client struct {
	baseURL     string
	apiKey      string
	clientAgent string
	http        *http.Client
}

func NewClient(cfg *config.HordeConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		clientAgent: cfg.ClientAgent,
		http:        &http.Client{Timeout: cfg.Timeout},
	}
}

// generateRequest is the submit payload. The nested params block carries the
// sampler settings; n is fixed to 1 because the client tracks a single image
// per job.
type generateRequest struct {
	Prompt string         `json:"prompt"`
	Params generateParams `json:"params"`
	Models []string       `json:"models"`
	NSFW   bool           `json:"nsfw"`
}

type generateParams struct {
	SamplerName       string  `json:"sampler_name"`
	CfgScale          float64 `json:"cfg_scale"`
	DenoisingStrength float64 `json:"denoising_strength"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	Steps             int     `json:"steps"`
	Karras            bool    `json:"karras"`
	N                 int     `json:"n"`
}

func (c *Client) CurrentUser(ctx context.Context) (*model.UserDetails, error) {
	var out model.UserDetails
	if err := c.do(ctx, http.MethodGet, "/find_user", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListModels(ctx context.Context) ([]model.ActiveModel, error) {
	var out []model.ActiveModel
	if err := c.do(ctx, http.MethodGet, "/status/models", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GenerateImage(ctx context.Context, opts *model.GenerationOptions) (*model.JobInProgress, error) {
	// The prompt field folds the negative prompt in after the service's
	// "###" separator.
	prompt := opts.Prompt
	if opts.NegativePrompt != "" {
		prompt = prompt + " ### " + opts.NegativePrompt
	}
	payload := generateRequest{
		Prompt: prompt,
		Models: []string{opts.Model},
		Params: generateParams{
			SamplerName:       opts.Sampler,
			CfgScale:          opts.CfgScale,
			DenoisingStrength: opts.DenoisingStrength,
			Width:             opts.Width,
			Height:            opts.Height,
			Steps:             opts.Steps,
			Karras:            opts.Karras,
			N:                 1,
		},
	}
	var out struct {
		ID    string  `json:"id"`
		Kudos float64 `json:"kudos"`
	}
	if err := c.do(ctx, http.MethodPost, "/generate/async", payload, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &adapter.APIError{Code: 0, Message: "submission returned no request id"}
	}
	return &model.JobInProgress{RequestID: out.ID, Kudos: out.Kudos}, nil
}

func (c *Client) CheckStatus(ctx context.Context, requestID string) (*model.StatusCheck, error) {
	var out model.StatusCheck
	if err := c.do(ctx, http.MethodGet, "/generate/check/"+requestID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelJob(ctx context.Context, requestID string) error {
	return c.do(ctx, http.MethodDelete, "/generate/status/"+requestID, nil, nil)
}

func (c *Client) FetchResult(ctx context.Context, requestID string) (*adapter.RequestStatusFull, error) {
	var out adapter.RequestStatusFull
	if err := c.do(ctx, http.MethodGet, "/generate/status/"+requestID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadImage fetches raw image bytes. The url is absolute (worker upload
// storage), so it bypasses the API base path but keeps the client timeout.
func (c *Client) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &adapter.APIError{Code: 0, Message: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &adapter.APIError{Code: resp.StatusCode, Message: "image download failed"}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &adapter.APIError{Code: 0, Message: err.Error()}
	}
	return b, nil
}

// do issues one API call and decodes the response into out (when non-nil).
// Non-2xx responses are decoded as the service's {message} shape and returned
// as *adapter.APIError.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Client-Agent", c.clientAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	op := operation(method, path)
	stop := metrics.ObserveHordeCall(op)
	resp, err := c.http.Do(req)
	if err != nil {
		stop(false)
		return &adapter.APIError{Code: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		stop(false)
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return &adapter.APIError{Code: resp.StatusCode, Message: apiErr.Message}
	}
	stop(true)

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// operation collapses a path with an embedded request id to a stable metric
// label.
func operation(method, path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return method + " /" + strings.Join(parts, "/")
}
