package model

import "math"

// Sampler weights for the kudos estimate. The second-order samplers run two
// model passes per step.
var samplerWeight = map[string]float64{
	SamplerHeun:  2,
	SamplerDPM2:  2,
	SamplerDPM2A: 2,
}

// EstimateKudos maps generation options to the expected kudos cost of the
// request. Pure arithmetic: identical options always yield an identical
// estimate. The shape follows the service's accounting, where cost grows with
// the pixel area relative to a 512x512 base and linearly with steps.
func EstimateKudos(o *GenerationOptions) float64 {
	if o == nil {
		return 0
	}
	w := samplerWeight[o.Sampler]
	if w == 0 {
		w = 1
	}
	base := math.Sqrt(float64(o.Width) * float64(o.Height) / (512 * 512))
	cost := base * float64(o.Steps) / 50.0 * w * 10
	if o.Karras {
		cost += 1
	}
	return math.Ceil(cost)
}
