package model

import (
	"fmt"

	"horde-image-client/internal/domain"
)

// Sampler names accepted by the horde backend.
const (
	SamplerEuler    = "k_euler"
	SamplerEulerA   = "k_euler_a"
	SamplerHeun     = "k_heun"
	SamplerLMS      = "k_lms"
	SamplerDPM2     = "k_dpm_2"
	SamplerDPM2A    = "k_dpm_2_a"
	SamplerDPMFast  = "k_dpm_fast"
	SamplerDPMAdapt = "k_dpm_adaptive"
	SamplerDDIM     = "ddim"
)

var validSamplers = map[string]struct{}{
	SamplerEuler: {}, SamplerEulerA: {}, SamplerHeun: {}, SamplerLMS: {},
	SamplerDPM2: {}, SamplerDPM2A: {}, SamplerDPMFast: {}, SamplerDPMAdapt: {},
	SamplerDDIM: {},
}

// GenerationOptions is the user-editable parameter set for one generation
// request. It is persisted on every edit so a restart restores the last form
// state.
type GenerationOptions struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt,omitempty"`
	Sampler           string  `json:"sampler"`
	CfgScale          float64 `json:"cfg_scale"`
	DenoisingStrength float64 `json:"denoising_strength"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	Steps             int     `json:"steps"`
	Model             string  `json:"model"`
	Karras            bool    `json:"karras"`
}

// DefaultGenerationOptions mirrors the service defaults for a fresh client.
func DefaultGenerationOptions() *GenerationOptions {
	return &GenerationOptions{
		Sampler:           SamplerEuler,
		CfgScale:          7,
		DenoisingStrength: 0.6,
		Width:             512,
		Height:            512,
		Steps:             30,
		Model:             "stable_diffusion",
	}
}

// Validate checks every field constraint. The first violation is returned,
// wrapped around domain.ErrInvalidOptions so callers can match the class.
func (o *GenerationOptions) Validate() error {
	if o.Prompt == "" {
		return fmt.Errorf("%w: prompt must not be empty", domain.ErrInvalidOptions)
	}
	if o.Model == "" {
		return fmt.Errorf("%w: model must not be empty", domain.ErrInvalidOptions)
	}
	if _, ok := validSamplers[o.Sampler]; !ok {
		return fmt.Errorf("%w: unknown sampler %q", domain.ErrInvalidOptions, o.Sampler)
	}
	if o.CfgScale < 0 || o.CfgScale > 100 {
		return fmt.Errorf("%w: cfg_scale %v outside [0,100]", domain.ErrInvalidOptions, o.CfgScale)
	}
	if o.DenoisingStrength < 0.01 || o.DenoisingStrength > 1 {
		return fmt.Errorf("%w: denoising_strength %v outside [0.01,1]", domain.ErrInvalidOptions, o.DenoisingStrength)
	}
	if err := validateDim("width", o.Width); err != nil {
		return err
	}
	if err := validateDim("height", o.Height); err != nil {
		return err
	}
	if o.Steps < 1 || o.Steps > 500 {
		return fmt.Errorf("%w: steps %d outside [1,500]", domain.ErrInvalidOptions, o.Steps)
	}
	return nil
}

func validateDim(name string, v int) error {
	if v < 64 || v > 3072 {
		return fmt.Errorf("%w: %s %d outside [64,3072]", domain.ErrInvalidOptions, name, v)
	}
	if v%64 != 0 {
		return fmt.Errorf("%w: %s %d is not a multiple of 64", domain.ErrInvalidOptions, name, v)
	}
	return nil
}
