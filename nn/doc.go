// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers, initializers, constraints and losses
// progressive GANs are built from.
//
// # Overview
//
// This package contains:
//   - Layers: Conv2D (same padding), Dense, Flatten, Reshape
//   - Resampling: UpSampling2D (nearest ×2), AveragePooling2D (2×2)
//   - Normalization: PixelNorm, MiniBatchStdev
//   - Activation: LeakyReLU
//   - Fade-in: WeightedSum driven by an externally owned Alpha
//   - Weights: RandomNormal, GlorotUniform, Zeros initializers and the
//     MaxNorm constraint, bundled in a WeightConfig
//   - Loss: WassersteinLoss
//
// Layers are connected into models by the graph package.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/progan/backend/cpu"
//	    "github.com/born-ml/progan/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    w := nn.NewWeightConfig(0.02, 1.0, 42)
//
//	    conv := nn.NewConv2D("conv", 3, 128, 3, w, backend)
//	    alpha := nn.NewAlpha(0)
//	    blend := nn.NewWeightedSum[*cpu.Backend]("fade", alpha)
//	    alpha.Set(0.5)
//	}
//
// # Weight sharing
//
// Layers own their parameters by pointer. A layer applied in several
// graphs uses the same weights in all of them.
package nn
