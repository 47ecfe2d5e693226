// Package optim implements the optimizers used to compile graph models.
//
// An optimizer owns a fixed parameter list. Step reads each parameter's
// gradient from the map produced by autodiff.Backward, updates the
// parameter in place and re-applies its constraint.
//
// Example usage:
//
//	opt := optim.NewAdam(model.TrainableParameters(), optim.DefaultAdamConfig())
//	grads := autodiff.Backward(loss, backend)
//	opt.Step(grads)
package optim

import (
	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/tensor"
)

// Optimizer updates parameters from gradients.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient in
	// grads. Parameters without a gradient are left untouched.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears the gradients stored on the parameters.
	ZeroGrad()

	// GetLR returns the learning rate.
	GetLR() float32
}

func gradientOf[B tensor.Backend](p *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if p == nil {
		return nil
	}
	return grads[p.Tensor().Raw()]
}
