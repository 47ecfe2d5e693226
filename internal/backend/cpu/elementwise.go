package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/progan/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, func(x, y float64) float64 { return x / y })
}

// MulScalar multiplies every element by s.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.unary("mul_scalar", x, func(v float64) float64 { return v * s })
}

// AddScalar adds s to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.unary("add_scalar", x, func(v float64) float64 { return v + s })
}

// Sqrt takes the element-wise square root.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sqrt", x, math.Sqrt)
}

func (cpu *CPUBackend) unary(op string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	out := cpu.alloc(op, x.Shape(), x.DType())
	dispatch(op, x.DType(),
		func() { mapUnary(view[float32](out), view[float32](x), f) },
		func() { mapUnary(view[float64](out), view[float64](x), f) },
	)
	return out
}

func mapUnary[E float](dst, src []E, f func(float64) float64) {
	for i, v := range src {
		dst[i] = E(f(float64(v)))
	}
}

func (cpu *CPUBackend) binary(op string, a, b *tensor.RawTensor, f func(x, y float64) float64) *tensor.RawTensor {
	sameDType(op, a, b)
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	out := cpu.alloc(op, outShape, a.DType())

	if !needsBroadcast {
		dispatch(op, a.DType(),
			func() { mapBinary(view[float32](out), view[float32](a), view[float32](b), f) },
			func() { mapBinary(view[float64](out), view[float64](a), view[float64](b), f) },
		)
		return out
	}

	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	dispatch(op, a.DType(),
		func() {
			mapBroadcast(view[float32](out), view[float32](a), view[float32](b), outShape, aStrides, bStrides, f)
		},
		func() {
			mapBroadcast(view[float64](out), view[float64](a), view[float64](b), outShape, aStrides, bStrides, f)
		},
	)
	return out
}

func mapBinary[E float](dst, a, b []E, f func(x, y float64) float64) {
	for i := range dst {
		dst[i] = E(f(float64(a[i]), float64(b[i])))
	}
}

func mapBroadcast[E float](dst, a, b []E, outShape tensor.Shape, aStrides, bStrides []int, f func(x, y float64) float64) {
	idx := make([]int, len(outShape))
	ai, bi := 0, 0
	for i := range dst {
		dst[i] = E(f(float64(a[ai]), float64(b[bi])))
		// Advance the multi-index like an odometer, keeping operand offsets in step.
		for d := len(outShape) - 1; d >= 0; d-- {
			idx[d]++
			ai += aStrides[d]
			bi += bStrides[d]
			if idx[d] < outShape[d] {
				break
			}
			ai -= aStrides[d] * idx[d]
			bi -= bStrides[d] * idx[d]
			idx[d] = 0
		}
	}
}

// broadcastStrides returns in's strides aligned to out, with 0 for every
// dimension that in broadcasts along.
func broadcastStrides(in, out tensor.Shape) []int {
	strides := make([]int, len(out))
	inStrides := in.ComputeStrides()
	offset := len(out) - len(in)
	for i := range in {
		if in[i] != 1 {
			strides[offset+i] = inStrides[i]
		}
	}
	return strides
}
