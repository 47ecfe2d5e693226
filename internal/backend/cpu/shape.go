package cpu

import (
	"fmt"

	"github.com/born-ml/progan/internal/tensor"
)

// Reshape returns a view of t with a new shape of the same size.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}
	return t.WithShape(newShape)
}

// Transpose permutes dimensions. With no axes it reverses them.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	srcStrides := make([]int, ndim)
	inStrides := t.Strides()
	for i, ax := range axes {
		newShape[i] = shape[ax]
		srcStrides[i] = inStrides[ax]
	}
	out := cpu.alloc("transpose", newShape, t.DType())
	gatherStrided(out.Data(), t.Data(), newShape, srcStrides, t.DType().Size())
	return out
}

// Expand broadcasts x to shape.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	got, _, err := tensor.BroadcastShapes(x.Shape(), shape)
	if err != nil || !got.Equal(shape) {
		panic(fmt.Sprintf("expand: cannot expand %v to %v", x.Shape(), shape))
	}
	out := cpu.alloc("expand", shape, x.DType())
	gatherStrided(out.Data(), x.Data(), shape, broadcastStrides(x.Shape(), shape), x.DType().Size())
	return out
}

// gatherStrided fills dst (contiguous, shaped as shape) by reading src at
// the given per-dimension element strides.
func gatherStrided(dst, src []byte, shape tensor.Shape, srcStrides []int, elemSize int) {
	n := shape.NumElements()
	idx := make([]int, len(shape))
	off := 0
	for i := 0; i < n; i++ {
		copy(dst[i*elemSize:(i+1)*elemSize], src[off*elemSize:(off+1)*elemSize])
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d]++
			off += srcStrides[d]
			if idx[d] < shape[d] {
				break
			}
			off -= srcStrides[d] * idx[d]
			idx[d] = 0
		}
	}
}

// Cat concatenates tensors along dim. All other dimensions must match.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors")
	}
	sameDType("cat", tensors...)
	first := tensors[0].Shape()
	dim = first.NormalizeDim(dim)

	outShape := first.Clone()
	outShape[dim] = 0
	for _, t := range tensors {
		s := t.Shape()
		if len(s) != len(first) {
			panic(fmt.Sprintf("cat: rank mismatch %v vs %v", first, s))
		}
		for d := range s {
			if d != dim && s[d] != first[d] {
				panic(fmt.Sprintf("cat: shape mismatch %v vs %v at dimension %d", first, s, d))
			}
		}
		outShape[dim] += s[dim]
	}

	elem := tensors[0].DType().Size()
	outer := 1
	for _, d := range first[:dim] {
		outer *= d
	}
	inner := 1
	for _, d := range first[dim+1:] {
		inner *= d
	}

	out := cpu.alloc("cat", outShape, tensors[0].DType())
	dst := out.Data()
	pos := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			chunk := t.Shape()[dim] * inner * elem
			copy(dst[pos:pos+chunk], t.Data()[o*chunk:(o+1)*chunk])
			pos += chunk
		}
	}
	return out
}
