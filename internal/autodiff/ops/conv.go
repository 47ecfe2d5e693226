package ops

import (
	"github.com/born-ml/progan/internal/tensor"
)

// Conv2DOp records a 2D convolution.
//
// Backward delegates to the backend: the input gradient is the transposed
// convolution of g with the kernel; the kernel gradient correlates the input
// with g.
type Conv2DOp struct {
	base
	stride int
	pad    tensor.Padding
}

// NewConv2DOp creates a new Conv2DOp.
func NewConv2DOp(input, kernel, output *tensor.RawTensor, stride int, pad tensor.Padding) *Conv2DOp {
	return &Conv2DOp{base{[]*tensor.RawTensor{input, kernel}, output}, stride, pad}
}

// Backward computes [dL/dinput, dL/dkernel].
func (op *Conv2DOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input, kernel := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		backend.Conv2DInputBackward(input, kernel, g, op.stride, op.pad),
		backend.Conv2DKernelBackward(input, kernel, g, op.stride, op.pad),
	}
}

// AvgPool2DOp records average pooling.
type AvgPool2DOp struct {
	base
	kernelSize, stride int
}

// NewAvgPool2DOp creates a new AvgPool2DOp.
func NewAvgPool2DOp(input, output *tensor.RawTensor, kernelSize, stride int) *AvgPool2DOp {
	return &AvgPool2DOp{base{[]*tensor.RawTensor{input}, output}, kernelSize, stride}
}

// Backward spreads g evenly over each pooling window.
func (op *AvgPool2DOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.AvgPool2DBackward(g, op.inputs[0].Shape(), op.kernelSize, op.stride)}
}

// Upsample2DOp records nearest-neighbour upsampling.
type Upsample2DOp struct {
	base
	scale int
}

// NewUpsample2DOp creates a new Upsample2DOp.
func NewUpsample2DOp(input, output *tensor.RawTensor, scale int) *Upsample2DOp {
	return &Upsample2DOp{base{[]*tensor.RawTensor{input}, output}, scale}
}

// Backward sums g over each replicated block.
func (op *Upsample2DOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Upsample2DBackward(g, op.scale)}
}
