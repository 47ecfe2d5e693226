// Package ops defines the differentiable operations recorded on a gradient
// tape.
//
// Each operation keeps references to its inputs and output from the forward
// pass and, given dL/doutput, returns dL/dinput for every input in the order
// reported by Inputs.
package ops

import "github.com/born-ml/progan/internal/tensor"

// Operation is one recorded node of the computation graph.
type Operation interface {
	// Backward computes the gradient of every input given the output
	// gradient. A nil entry means no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors, in the order Backward uses.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor produced by the forward pass.
	Output() *tensor.RawTensor
}

// base stores the inputs and output every op needs.
type base struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

func (b base) Inputs() []*tensor.RawTensor { return b.inputs }

func (b base) Output() *tensor.RawTensor { return b.output }
