package cpu

import (
	"fmt"

	"github.com/born-ml/progan/internal/parallel"
	"github.com/born-ml/progan/internal/tensor"
)

// Conv2DInputBackward computes dL/dinput given dL/doutput (grad).
//
// Per sample: dcol[p, k] = Σ_co grad[co, p] · kernel[co, k], then col2im
// scatters dcol back onto the input positions each patch was read from.
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride int, pad tensor.Padding) *tensor.RawTensor {
	sameDType("conv2d_input_backward", input, kernel, grad)
	g := newConvGeom("conv2d_input_backward", input, kernel, stride, pad)
	checkConvGrad("conv2d_input_backward", grad, g)

	out := cpu.alloc("conv2d_input_backward", input.Shape(), grad.DType())
	dispatch("conv2d_input_backward", grad.DType(),
		func() { conv2dInputBackward(view[float32](out), view[float32](kernel), view[float32](grad), g, cpu.par) },
		func() { conv2dInputBackward(view[float64](out), view[float64](kernel), view[float64](grad), g, cpu.par) },
	)
	return out
}

func conv2dInputBackward[E float](dInput, kernel, grad []E, g convGeom, cfg parallel.Config) {
	sampleSize := g.cIn * g.h * g.w
	parallel.For(g.n, func(n int) {
		dcol := make([]E, g.colLen*g.colWidth)
		gs := grad[n*g.cOut*g.colLen : (n+1)*g.cOut*g.colLen]
		for co := 0; co < g.cOut; co++ {
			krow := kernel[co*g.colWidth : (co+1)*g.colWidth]
			for p := 0; p < g.colLen; p++ {
				gv := gs[co*g.colLen+p]
				if gv == 0 {
					continue
				}
				drow := dcol[p*g.colWidth : (p+1)*g.colWidth]
				for k, kv := range krow {
					drow[k] += gv * kv
				}
			}
		}
		col2im(dInput[n*sampleSize:(n+1)*sampleSize], dcol, g)
	}, cfg)
}

// Conv2DKernelBackward computes dL/dkernel given dL/doutput (grad).
//
// dkernel[co, k] = Σ_n Σ_p grad[n, co, p] · col_n[p, k].
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride int, pad tensor.Padding) *tensor.RawTensor {
	sameDType("conv2d_kernel_backward", input, kernel, grad)
	g := newConvGeom("conv2d_kernel_backward", input, kernel, stride, pad)
	checkConvGrad("conv2d_kernel_backward", grad, g)

	out := cpu.alloc("conv2d_kernel_backward", kernel.Shape(), grad.DType())
	dispatch("conv2d_kernel_backward", grad.DType(),
		func() { conv2dKernelBackward(view[float32](out), view[float32](input), view[float32](grad), g, cpu.par) },
		func() { conv2dKernelBackward(view[float64](out), view[float64](input), view[float64](grad), g, cpu.par) },
	)
	return out
}

func conv2dKernelBackward[E float](dKernel, input, grad []E, g convGeom, cfg parallel.Config) {
	sampleSize := g.cIn * g.h * g.w
	cols := make([][]E, g.n)
	parallel.For(g.n, func(n int) {
		cols[n] = make([]E, g.colLen*g.colWidth)
		im2col(cols[n], input[n*sampleSize:(n+1)*sampleSize], g)
	}, cfg)

	parallel.For(g.cOut, func(co int) {
		drow := dKernel[co*g.colWidth : (co+1)*g.colWidth]
		for n := 0; n < g.n; n++ {
			gs := grad[(n*g.cOut+co)*g.colLen : (n*g.cOut+co+1)*g.colLen]
			for p, gv := range gs {
				if gv == 0 {
					continue
				}
				patch := cols[n][p*g.colWidth : (p+1)*g.colWidth]
				for k, v := range patch {
					drow[k] += gv * v
				}
			}
		}
	}, cfg)
}

func checkConvGrad(op string, grad *tensor.RawTensor, g convGeom) {
	want := tensor.Shape{g.n, g.cOut, g.hOut, g.wOut}
	if !grad.Shape().Equal(want) {
		panic(fmt.Sprintf("%s: grad shape %v, expected %v", op, grad.Shape(), want))
	}
}
