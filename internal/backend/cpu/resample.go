package cpu

import (
	"fmt"

	"github.com/born-ml/progan/internal/parallel"
	"github.com/born-ml/progan/internal/tensor"
)

// AvgPool2D averages non-padded k×k windows: [N,C,H,W] → [N,C,(H-k)/s+1,(W-k)/s+1].
func (cpu *CPUBackend) AvgPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	s := input.Shape()
	if len(s) != 4 {
		panic(fmt.Sprintf("avgpool2d: input must be 4D [N,C,H,W], got %dD", len(s)))
	}
	hOut, wOut := poolOut("avgpool2d", s[2], s[3], kernelSize, stride)
	out := cpu.alloc("avgpool2d", tensor.Shape{s[0], s[1], hOut, wOut}, input.DType())
	dispatch("avgpool2d", input.DType(),
		func() { avgPool(view[float32](out), view[float32](input), s, hOut, wOut, kernelSize, stride, cpu.par) },
		func() { avgPool(view[float64](out), view[float64](input), s, hOut, wOut, kernelSize, stride, cpu.par) },
	)
	return out
}

// AvgPool2DBackward spreads each output gradient evenly over its window.
func (cpu *CPUBackend) AvgPool2DBackward(grad *tensor.RawTensor, inputShape tensor.Shape, kernelSize, stride int) *tensor.RawTensor {
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("avgpool2d_backward: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	hOut, wOut := poolOut("avgpool2d_backward", inputShape[2], inputShape[3], kernelSize, stride)
	want := tensor.Shape{inputShape[0], inputShape[1], hOut, wOut}
	if !grad.Shape().Equal(want) {
		panic(fmt.Sprintf("avgpool2d_backward: grad shape %v, expected %v", grad.Shape(), want))
	}
	out := cpu.alloc("avgpool2d_backward", inputShape, grad.DType())
	dispatch("avgpool2d_backward", grad.DType(),
		func() {
			avgPoolBackward(view[float32](out), view[float32](grad), inputShape, hOut, wOut, kernelSize, stride, cpu.par)
		},
		func() {
			avgPoolBackward(view[float64](out), view[float64](grad), inputShape, hOut, wOut, kernelSize, stride, cpu.par)
		},
	)
	return out
}

func poolOut(op string, h, w, k, stride int) (int, int) {
	if k < 1 || stride < 1 {
		panic(fmt.Sprintf("%s: kernel size and stride must be positive, got %d and %d", op, k, stride))
	}
	if h < k || w < k {
		panic(fmt.Sprintf("%s: window %d larger than input %dx%d", op, k, h, w))
	}
	return (h-k)/stride + 1, (w-k)/stride + 1
}

func avgPool[E float](out, in []E, s tensor.Shape, hOut, wOut, k, stride int, cfg parallel.Config) {
	h, w := s[2], s[3]
	inv := 1 / E(k*k)
	parallel.For(s[0]*s[1], func(plane int) {
		src := in[plane*h*w : (plane+1)*h*w]
		dst := out[plane*hOut*wOut : (plane+1)*hOut*wOut]
		for oh := 0; oh < hOut; oh++ {
			for ow := 0; ow < wOut; ow++ {
				var sum E
				for i := 0; i < k; i++ {
					row := (oh*stride + i) * w
					for j := 0; j < k; j++ {
						sum += src[row+ow*stride+j]
					}
				}
				dst[oh*wOut+ow] = sum * inv
			}
		}
	}, cfg)
}

func avgPoolBackward[E float](dIn, grad []E, s tensor.Shape, hOut, wOut, k, stride int, cfg parallel.Config) {
	h, w := s[2], s[3]
	inv := 1 / E(k*k)
	parallel.For(s[0]*s[1], func(plane int) {
		dst := dIn[plane*h*w : (plane+1)*h*w]
		g := grad[plane*hOut*wOut : (plane+1)*hOut*wOut]
		for oh := 0; oh < hOut; oh++ {
			for ow := 0; ow < wOut; ow++ {
				gv := g[oh*wOut+ow] * inv
				for i := 0; i < k; i++ {
					row := (oh*stride + i) * w
					for j := 0; j < k; j++ {
						dst[row+ow*stride+j] += gv
					}
				}
			}
		}
	}, cfg)
}

// Upsample2D repeats every pixel scale×scale times (nearest neighbour).
func (cpu *CPUBackend) Upsample2D(input *tensor.RawTensor, scale int) *tensor.RawTensor {
	s := input.Shape()
	if len(s) != 4 {
		panic(fmt.Sprintf("upsample2d: input must be 4D [N,C,H,W], got %dD", len(s)))
	}
	if scale < 1 {
		panic(fmt.Sprintf("upsample2d: scale must be positive, got %d", scale))
	}
	out := cpu.alloc("upsample2d", tensor.Shape{s[0], s[1], s[2] * scale, s[3] * scale}, input.DType())
	dispatch("upsample2d", input.DType(),
		func() { upsample(view[float32](out), view[float32](input), s, scale, cpu.par) },
		func() { upsample(view[float64](out), view[float64](input), s, scale, cpu.par) },
	)
	return out
}

// Upsample2DBackward sums the gradient over each scale×scale block.
func (cpu *CPUBackend) Upsample2DBackward(grad *tensor.RawTensor, scale int) *tensor.RawTensor {
	s := grad.Shape()
	if len(s) != 4 {
		panic(fmt.Sprintf("upsample2d_backward: grad must be 4D [N,C,H,W], got %dD", len(s)))
	}
	if scale < 1 || s[2]%scale != 0 || s[3]%scale != 0 {
		panic(fmt.Sprintf("upsample2d_backward: grad shape %v not divisible by scale %d", s, scale))
	}
	inShape := tensor.Shape{s[0], s[1], s[2] / scale, s[3] / scale}
	out := cpu.alloc("upsample2d_backward", inShape, grad.DType())
	dispatch("upsample2d_backward", grad.DType(),
		func() { upsampleBackward(view[float32](out), view[float32](grad), inShape, scale, cpu.par) },
		func() { upsampleBackward(view[float64](out), view[float64](grad), inShape, scale, cpu.par) },
	)
	return out
}

func upsample[E float](out, in []E, s tensor.Shape, scale int, cfg parallel.Config) {
	h, w := s[2], s[3]
	ho, wo := h*scale, w*scale
	parallel.For(s[0]*s[1], func(plane int) {
		src := in[plane*h*w : (plane+1)*h*w]
		dst := out[plane*ho*wo : (plane+1)*ho*wo]
		for y := 0; y < ho; y++ {
			srow := src[(y/scale)*w : (y/scale+1)*w]
			drow := dst[y*wo : (y+1)*wo]
			for x := range drow {
				drow[x] = srow[x/scale]
			}
		}
	}, cfg)
}

func upsampleBackward[E float](dIn, grad []E, s tensor.Shape, scale int, cfg parallel.Config) {
	h, w := s[2], s[3]
	ho, wo := h*scale, w*scale
	parallel.For(s[0]*s[1], func(plane int) {
		g := grad[plane*ho*wo : (plane+1)*ho*wo]
		dst := dIn[plane*h*w : (plane+1)*h*w]
		for y := 0; y < ho; y++ {
			for x := 0; x < wo; x++ {
				dst[(y/scale)*w+x/scale] += g[y*wo+x]
			}
		}
	}, cfg)
}
