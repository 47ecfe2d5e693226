// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package progan builds progressively growing GAN generators,
// discriminators and composite models.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/progan/autodiff"
//	    "github.com/born-ml/progan/backend/cpu"
//	    "github.com/born-ml/progan/nn"
//	    "github.com/born-ml/progan/progan"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    b, err := progan.NewBuilder(backend, nn.NewWeightConfig(0.02, 1.0, 42), progan.DefaultHyper())
//
//	    gens, err := b.Generator(100, 6, 4)      // 4×4 ... 128×128
//	    discs, err := b.Discriminator(6, nil)
//	    gans, err := b.Composite(gens, discs)
//
//	    // Fade stage 1 in over n steps
//	    for step := range n {
//	        progan.UpdateFadeIn(step, n, gens[1].Alpha)
//	        discs[1].FadeIn.TrainOnBatch(real, realLabels)
//	        gans[1].FadeIn.TrainOnBatch(latent, realLabels)
//	    }
//	}
//
// Stage i of every network works on images of side base·2^i and shares
// all but its newest block with stage i-1.
package progan

import (
	"go.uber.org/zap"

	"github.com/born-ml/progan/internal/progan"
	"github.com/born-ml/progan/internal/tensor"
	"github.com/born-ml/progan/nn"
)

// ErrInvalidConfig is returned for out-of-range builder arguments.
var ErrInvalidConfig = progan.ErrInvalidConfig

// DefaultInputLayers is the number of leading discriminator layers a new
// block replaces.
const DefaultInputLayers = progan.DefaultInputLayers

// Hyper holds the architecture hyper-parameters shared by all stages.
type Hyper = progan.Hyper

// DefaultHyper returns 128 filters, RGB images, slope 0.2 and the PGGAN
// Adam setting.
func DefaultHyper() Hyper {
	return progan.DefaultHyper()
}

// Stage is one resolution of a growing network.
type Stage[B tensor.Backend] = progan.Stage[B]

// Builder creates the layers of all networks from one weight config.
type Builder[B tensor.Backend] = progan.Builder[B]

// BuilderOption configures a Builder.
type BuilderOption = progan.BuilderOption

// WithLogger sets the logger stage construction is reported to.
func WithLogger(l *zap.Logger) BuilderOption {
	return progan.WithLogger(l)
}

// WithHeadWeights overrides the discriminator's Dense(1) weights.
func WithHeadWeights(w nn.WeightConfig) BuilderOption {
	return progan.WithHeadWeights(w)
}

// NewBuilder creates a builder.
func NewBuilder[B tensor.Backend](backend B, weights nn.WeightConfig, hyper Hyper, opts ...BuilderOption) (*Builder[B], error) {
	return progan.NewBuilder(backend, weights, hyper, opts...)
}

// UpdateFadeIn sets every handle to step/(nSteps-1), clamped to [0, 1].
func UpdateFadeIn(step, nSteps int, alphas ...*nn.Alpha) float64 {
	return progan.UpdateFadeIn(step, nSteps, alphas...)
}
