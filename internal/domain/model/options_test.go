package model_test

import (
	"errors"
	"testing"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
)

func validOptions() *model.GenerationOptions {
	o := model.DefaultGenerationOptions()
	o.Prompt = "a lighthouse at dusk"
	return o
}

func TestGenerationOptions_Validate_OK(t *testing.T) {
	if err := validOptions().Validate(); err != nil {
		t.Fatalf("expected valid options, got %v", err)
	}
}

func TestGenerationOptions_Validate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.GenerationOptions)
	}{
		{"empty prompt", func(o *model.GenerationOptions) { o.Prompt = "" }},
		{"empty model", func(o *model.GenerationOptions) { o.Model = "" }},
		{"unknown sampler", func(o *model.GenerationOptions) { o.Sampler = "k_bogus" }},
		{"cfg too high", func(o *model.GenerationOptions) { o.CfgScale = 100.5 }},
		{"cfg negative", func(o *model.GenerationOptions) { o.CfgScale = -1 }},
		{"denoise too low", func(o *model.GenerationOptions) { o.DenoisingStrength = 0.001 }},
		{"denoise too high", func(o *model.GenerationOptions) { o.DenoisingStrength = 1.5 }},
		{"width not multiple of 64", func(o *model.GenerationOptions) { o.Width = 500 }},
		{"height not multiple of 64", func(o *model.GenerationOptions) { o.Height = 100 }},
		{"width too small", func(o *model.GenerationOptions) { o.Width = 0 }},
		{"height too large", func(o *model.GenerationOptions) { o.Height = 3136 }},
		{"steps zero", func(o *model.GenerationOptions) { o.Steps = 0 }},
		{"steps too many", func(o *model.GenerationOptions) { o.Steps = 501 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := validOptions()
			tc.mutate(o)
			err := o.Validate()
			if err == nil {
				t.Fatalf("expected rejection")
			}
			if !errors.Is(err, domain.ErrInvalidOptions) {
				t.Fatalf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestGenerationOptions_Validate_DimBoundaries(t *testing.T) {
	for _, dim := range []int{64, 512, 3072} {
		o := validOptions()
		o.Width = dim
		o.Height = dim
		if err := o.Validate(); err != nil {
			t.Fatalf("dim %d should be accepted: %v", dim, err)
		}
	}
}
