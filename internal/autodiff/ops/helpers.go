package ops

import (
	"github.com/born-ml/progan/internal/tensor"
)

// reduceBroadcast sums grad back down to targetShape after a broadcasting
// forward op.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (summed along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}
	if targetShape.NumElements() == 1 {
		return backend.Reshape(backend.Sum(grad), targetShape)
	}

	// Leading dimensions the target does not have.
	for len(grad.Shape()) > len(targetShape) {
		grad = backend.SumDim(grad, 0, false)
	}
	for i, d := range targetShape {
		if d == 1 && grad.Shape()[i] > 1 {
			grad = backend.SumDim(grad, i, true)
		}
	}
	if !grad.Shape().Equal(targetShape) {
		grad = backend.Reshape(grad, targetShape)
	}
	return grad
}

// expandTo broadcasts a reduced gradient back over the reduced dimension.
func expandTo(grad *tensor.RawTensor, dim int, inputShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	kept := inputShape.Clone()
	kept[dim] = 1
	return backend.Expand(backend.Reshape(grad, kept), inputShape)
}
