package cpu

import (
	"github.com/born-ml/progan/internal/tensor"
)

// Sum reduces all elements to a scalar of shape [].
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := cpu.alloc("sum", tensor.Shape{}, x.DType())
	dispatch("sum", x.DType(),
		func() { view[float32](out)[0] = sumAll(view[float32](x)) },
		func() { view[float64](out)[0] = sumAll(view[float64](x)) },
	)
	return out
}

func sumAll[E float](data []E) E {
	var acc float64
	for _, v := range data {
		acc += float64(v)
	}
	return E(acc)
}

// SumDim sums along dim.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("sum_dim", x, dim, keepDim, false)
}

// MeanDim averages along dim.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("mean_dim", x, dim, keepDim, true)
}

func (cpu *CPUBackend) reduceDim(op string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = shape.NormalizeDim(dim)

	outer, size, inner := splitAt(shape, dim)
	out := cpu.alloc(op, reducedShape(shape, dim, keepDim), x.DType())
	dispatch(op, x.DType(),
		func() { reduceAxis(view[float32](out), view[float32](x), outer, size, inner, mean) },
		func() { reduceAxis(view[float64](out), view[float64](x), outer, size, inner, mean) },
	)
	return out
}

func reduceAxis[E float](dst, src []E, outer, size, inner int, mean bool) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			var acc float64
			base := o*size*inner + i
			for s := 0; s < size; s++ {
				acc += float64(src[base+s*inner])
			}
			if mean {
				acc /= float64(size)
			}
			dst[o*inner+i] = E(acc)
		}
	}
}

// splitAt returns the product of dimensions before dim, dim's size and the
// product after it.
func splitAt(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for _, d := range shape[:dim] {
		outer *= d
	}
	for _, d := range shape[dim+1:] {
		inner *= d
	}
	return outer, shape[dim], inner
}

func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	out = append(out, shape[:dim]...)
	return append(out, shape[dim+1:]...)
}
