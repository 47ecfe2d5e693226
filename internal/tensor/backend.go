package tensor

// Padding is the number of zero rows/columns added on each side of a
// convolution input.
type Padding struct {
	Top, Bottom, Left, Right int
}

// SamePadding returns the padding that keeps the spatial size unchanged
// for a stride-1 convolution with a kh×kw kernel. For even kernels the
// extra row goes to the bottom and the extra column to the right.
func SamePadding(kh, kw int) Padding {
	return Padding{
		Top:    (kh - 1) / 2,
		Bottom: kh / 2,
		Left:   (kw - 1) / 2,
		Right:  kw / 2,
	}
}

// Symmetric reports whether the padding is the same on every side.
func (p Padding) Symmetric() bool {
	return p.Top == p.Bottom && p.Left == p.Right && p.Top == p.Left
}

// Backend is the set of raw operations a compute device must provide.
//
// Implementations must not modify their inputs and must return a newly
// allocated result (Reshape may return a view). Misuse such as mismatched
// shapes panics with an "op: reason" message.
//
// Image tensors use NCHW layout; convolution kernels are
// [out_channels, in_channels, kh, kw].
type Backend interface {
	// Element-wise, with NumPy broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	MulScalar(x *RawTensor, scalar float64) *RawTensor
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	Sqrt(x *RawTensor) *RawTensor

	// MatMul multiplies 2-D matrices [M,K] @ [K,N].
	MatMul(a, b *RawTensor) *RawTensor
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Convolution and its gradients with respect to input and kernel.
	Conv2D(input, kernel *RawTensor, stride int, pad Padding) *RawTensor
	Conv2DInputBackward(input, kernel, grad *RawTensor, stride int, pad Padding) *RawTensor
	Conv2DKernelBackward(input, kernel, grad *RawTensor, stride int, pad Padding) *RawTensor

	// Spatial resampling.
	AvgPool2D(input *RawTensor, kernelSize, stride int) *RawTensor
	AvgPool2DBackward(grad *RawTensor, inputShape Shape, kernelSize, stride int) *RawTensor
	Upsample2D(input *RawTensor, scale int) *RawTensor
	Upsample2DBackward(grad *RawTensor, scale int) *RawTensor

	LeakyReLU(x *RawTensor, alpha float64) *RawTensor
	LeakyReLUBackward(x, grad *RawTensor, alpha float64) *RawTensor

	Name() string
	Device() Device
}
