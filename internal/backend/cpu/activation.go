package cpu

import (
	"fmt"

	"github.com/born-ml/progan/internal/tensor"
)

// LeakyReLU returns x for x > 0 and alpha·x otherwise.
func (cpu *CPUBackend) LeakyReLU(x *tensor.RawTensor, alpha float64) *tensor.RawTensor {
	return cpu.unary("leaky_relu", x, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return alpha * v
	})
}

// LeakyReLUBackward scales grad by 1 where x > 0 and by alpha elsewhere.
func (cpu *CPUBackend) LeakyReLUBackward(x, grad *tensor.RawTensor, alpha float64) *tensor.RawTensor {
	if !x.Shape().Equal(grad.Shape()) {
		panic(fmt.Sprintf("leaky_relu_backward: shape mismatch %v vs %v", x.Shape(), grad.Shape()))
	}
	return cpu.binary("leaky_relu_backward", x, grad, func(v, g float64) float64 {
		if v > 0 {
			return g
		}
		return alpha * g
	})
}
