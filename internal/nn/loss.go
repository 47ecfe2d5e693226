package nn

import (
	"fmt"

	"github.com/born-ml/progan/internal/tensor"
)

// Loss reduces a batch of predictions and targets to a scalar.
// Arguments follow the (y_true, y_pred) order.
type Loss[B tensor.Backend] interface {
	Name() string
	Compute(yTrue, yPred *Float32[B]) *Float32[B]
}

// WassersteinLoss is mean(y_true · y_pred).
//
// With labels -1 for real and +1 for fake samples, minimizing it pushes
// the critic's scores for the two sets apart.
type WassersteinLoss[B tensor.Backend] struct{}

// NewWassersteinLoss creates a Wasserstein loss.
func NewWassersteinLoss[B tensor.Backend]() WassersteinLoss[B] {
	return WassersteinLoss[B]{}
}

// Name returns "wasserstein".
func (WassersteinLoss[B]) Name() string { return "wasserstein" }

// Compute returns a scalar tensor.
func (WassersteinLoss[B]) Compute(yTrue, yPred *Float32[B]) *Float32[B] {
	if !yTrue.Shape().Equal(yPred.Shape()) {
		panic(fmt.Sprintf("wasserstein: y_true %v and y_pred %v differ in shape", yTrue.Shape(), yPred.Shape()))
	}
	return yTrue.Mul(yPred).Mean()
}
