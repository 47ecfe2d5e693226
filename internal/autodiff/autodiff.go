// Package autodiff implements reverse-mode automatic differentiation as a
// backend decorator.
//
// AutodiffBackend wraps any tensor.Backend: every op runs on the wrapped
// backend and, while the tape is recording, an ops.Operation describing it
// is appended to the GradientTape.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1}, backend)
//	y := x.Mul(x)
//	grads := autodiff.Backward(y, backend)
//	// grads[x.Raw()] == [4]
package autodiff

import (
	"github.com/born-ml/progan/internal/autodiff/ops"
	"github.com/born-ml/progan/internal/tensor"
)

// AutodiffBackend wraps a Backend and records differentiable operations.
type AutodiffBackend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

var _ BackwardCapable = (*AutodiffBackend[tensor.Backend])(nil)

// New wraps backend with gradient tracking. The tape starts stopped.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{inner: backend, tape: NewGradientTape()}
}

// Tape returns the gradient tape for manual control.
func (b *AutodiffBackend[B]) Tape() *GradientTape { return b.tape }

// Inner returns the wrapped backend.
func (b *AutodiffBackend[B]) Inner() B { return b.inner }

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string { return "Autodiff(" + b.inner.Name() + ")" }

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device { return b.inner.Device() }

func (b *AutodiffBackend[B]) record(op ops.Operation) {
	if b.tape.IsRecording() {
		b.tape.Record(op)
	}
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Add(x, y)
	b.record(ops.NewAddOp(x, y, out))
	return out
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sub(x, y)
	b.record(ops.NewSubOp(x, y, out))
	return out
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Mul(x, y)
	b.record(ops.NewMulOp(x, y, out))
	return out
}

// Div performs element-wise division and records the operation.
func (b *AutodiffBackend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Div(x, y)
	b.record(ops.NewDivOp(x, y, out))
	return out
}

// MulScalar multiplies by a constant and records the operation.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	out := b.inner.MulScalar(x, s)
	b.record(ops.NewMulScalarOp(x, out, s))
	return out
}

// AddScalar adds a constant and records the operation.
func (b *AutodiffBackend[B]) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	out := b.inner.AddScalar(x, s)
	b.record(ops.NewAddScalarOp(x, out))
	return out
}

// Sqrt takes the square root and records the operation.
func (b *AutodiffBackend[B]) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sqrt(x)
	b.record(ops.NewSqrtOp(x, out))
	return out
}

// MatMul multiplies matrices and records the operation.
func (b *AutodiffBackend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.MatMul(x, y)
	b.record(ops.NewMatMulOp(x, y, out))
	return out
}

// Reshape reshapes and records the operation.
func (b *AutodiffBackend[B]) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	out := b.inner.Reshape(x, newShape)
	b.record(ops.NewReshapeOp(x, out))
	return out
}

// Transpose permutes axes and records the operation.
func (b *AutodiffBackend[B]) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	out := b.inner.Transpose(x, axes...)
	b.record(ops.NewTransposeOp(x, out, axes))
	return out
}

// Expand broadcasts and records the operation.
func (b *AutodiffBackend[B]) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out := b.inner.Expand(x, shape)
	b.record(ops.NewExpandOp(x, out))
	return out
}

// Cat concatenates and records the operation.
func (b *AutodiffBackend[B]) Cat(xs []*tensor.RawTensor, dim int) *tensor.RawTensor {
	out := b.inner.Cat(xs, dim)
	b.record(ops.NewCatOp(xs, out, dim))
	return out
}

// Sum reduces to a scalar and records the operation.
func (b *AutodiffBackend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sum(x)
	b.record(ops.NewSumOp(x, out))
	return out
}

// SumDim sums along dim and records the operation.
func (b *AutodiffBackend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	out := b.inner.SumDim(x, dim, keepDim)
	b.record(ops.NewSumDimOp(x, out, dim))
	return out
}

// MeanDim averages along dim and records the operation.
func (b *AutodiffBackend[B]) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	out := b.inner.MeanDim(x, dim, keepDim)
	b.record(ops.NewMeanDimOp(x, out, dim))
	return out
}

// Conv2D convolves and records the operation.
func (b *AutodiffBackend[B]) Conv2D(input, kernel *tensor.RawTensor, stride int, pad tensor.Padding) *tensor.RawTensor {
	out := b.inner.Conv2D(input, kernel, stride, pad)
	b.record(ops.NewConv2DOp(input, kernel, out, stride, pad))
	return out
}

// Conv2DInputBackward delegates to the wrapped backend without recording.
func (b *AutodiffBackend[B]) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride int, pad tensor.Padding) *tensor.RawTensor {
	return b.inner.Conv2DInputBackward(input, kernel, grad, stride, pad)
}

// Conv2DKernelBackward delegates to the wrapped backend without recording.
func (b *AutodiffBackend[B]) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride int, pad tensor.Padding) *tensor.RawTensor {
	return b.inner.Conv2DKernelBackward(input, kernel, grad, stride, pad)
}

// AvgPool2D pools and records the operation.
func (b *AutodiffBackend[B]) AvgPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	out := b.inner.AvgPool2D(input, kernelSize, stride)
	b.record(ops.NewAvgPool2DOp(input, out, kernelSize, stride))
	return out
}

// AvgPool2DBackward delegates to the wrapped backend without recording.
func (b *AutodiffBackend[B]) AvgPool2DBackward(grad *tensor.RawTensor, inputShape tensor.Shape, kernelSize, stride int) *tensor.RawTensor {
	return b.inner.AvgPool2DBackward(grad, inputShape, kernelSize, stride)
}

// Upsample2D upsamples and records the operation.
func (b *AutodiffBackend[B]) Upsample2D(input *tensor.RawTensor, scale int) *tensor.RawTensor {
	out := b.inner.Upsample2D(input, scale)
	b.record(ops.NewUpsample2DOp(input, out, scale))
	return out
}

// Upsample2DBackward delegates to the wrapped backend without recording.
func (b *AutodiffBackend[B]) Upsample2DBackward(grad *tensor.RawTensor, scale int) *tensor.RawTensor {
	return b.inner.Upsample2DBackward(grad, scale)
}

// LeakyReLU applies the activation and records the operation.
func (b *AutodiffBackend[B]) LeakyReLU(x *tensor.RawTensor, alpha float64) *tensor.RawTensor {
	out := b.inner.LeakyReLU(x, alpha)
	b.record(ops.NewLeakyReLUOp(x, out, alpha))
	return out
}

// LeakyReLUBackward delegates to the wrapped backend without recording.
func (b *AutodiffBackend[B]) LeakyReLUBackward(x, grad *tensor.RawTensor, alpha float64) *tensor.RawTensor {
	return b.inner.LeakyReLUBackward(x, grad, alpha)
}
