package progan

import "github.com/born-ml/progan/internal/nn"

// UpdateFadeIn sets every handle to step/(nSteps-1), clamped to [0, 1],
// and returns the value. With nSteps <= 1 the fade-in is complete.
//
// Call it once per training step of a fade-in phase with the alphas of
// every model being trained, e.g. the generator, discriminator and
// composite stages of one resolution.
func UpdateFadeIn(step, nSteps int, alphas ...*nn.Alpha) float64 {
	v := 1.0
	if nSteps > 1 {
		v = float64(step) / float64(nSteps-1)
	}
	v = min(max(v, 0), 1)
	for _, a := range alphas {
		if a != nil {
			a.Set(v)
		}
	}
	return v
}
