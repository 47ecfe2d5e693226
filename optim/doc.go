// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the optimizers graph models are compiled with.
//
// # Overview
//
// This package contains:
//   - Adam: Adaptive Moment Estimation with bias correction, configured
//     explicitly so that beta1 = 0 (the progressive GAN setting) is kept
//   - Optimizer interface for custom optimizers
//
// Optimizers re-apply each parameter's constraint after every update.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/progan/autodiff"
//	    "github.com/born-ml/progan/optim"
//	)
//
//	optimizer := optim.NewAdam(model.TrainableParameters(), optim.DefaultAdamConfig())
//	model.Compile(loss, optimizer)
//
// # Manual step
//
//	backend.Tape().StartRecording()
//	loss := criterion.Compute(y, model.Forward(x))
//	grads := autodiff.Backward(loss, backend)
//	optimizer.Step(grads)
package optim
