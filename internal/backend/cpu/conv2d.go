package cpu

import (
	"fmt"

	"github.com/born-ml/progan/internal/parallel"
	"github.com/born-ml/progan/internal/tensor"
)

// convGeom holds the dimensions of one Conv2D call.
type convGeom struct {
	n, cIn, h, w     int
	cOut, kh, kw     int
	hOut, wOut       int
	stride           int
	pad              tensor.Padding
	colWidth, colLen int // CIn*KH*KW and HOut*WOut
}

func newConvGeom(op string, input, kernel *tensor.RawTensor, stride int, pad tensor.Padding) convGeom {
	is, ks := input.Shape(), kernel.Shape()
	if len(is) != 4 {
		panic(fmt.Sprintf("%s: input must be 4D [N,C,H,W], got %dD", op, len(is)))
	}
	if len(ks) != 4 {
		panic(fmt.Sprintf("%s: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", op, len(ks)))
	}
	if is[1] != ks[1] {
		panic(fmt.Sprintf("%s: input channels %d != kernel channels %d", op, is[1], ks[1]))
	}
	if stride < 1 {
		panic(fmt.Sprintf("%s: stride must be positive, got %d", op, stride))
	}
	g := convGeom{
		n: is[0], cIn: is[1], h: is[2], w: is[3],
		cOut: ks[0], kh: ks[2], kw: ks[3],
		stride: stride, pad: pad,
	}
	g.hOut = (g.h+pad.Top+pad.Bottom-g.kh)/stride + 1
	g.wOut = (g.w+pad.Left+pad.Right-g.kw)/stride + 1
	if g.hOut <= 0 || g.wOut <= 0 {
		panic(fmt.Sprintf("%s: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", op, g.hOut, g.wOut))
	}
	g.colWidth = g.cIn * g.kh * g.kw
	g.colLen = g.hOut * g.wOut
	return g
}

// Conv2D performs a 2D convolution using im2col.
//
// Input: [N, C_in, H, W], kernel: [C_out, C_in, K_h, K_w],
// output: [N, C_out, H_out, W_out] where
// H_out = (H + pad.Top + pad.Bottom - K_h)/stride + 1.
//
// Each sample is unrolled into a [H_out*W_out, C_in*K_h*K_w] patch matrix
// and multiplied by the kernel viewed as [C_out, C_in*K_h*K_w]. Samples
// are processed in parallel.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride int, pad tensor.Padding) *tensor.RawTensor {
	sameDType("conv2d", input, kernel)
	g := newConvGeom("conv2d", input, kernel, stride, pad)
	out := cpu.alloc("conv2d", tensor.Shape{g.n, g.cOut, g.hOut, g.wOut}, input.DType())
	dispatch("conv2d", input.DType(),
		func() { conv2d(view[float32](out), view[float32](input), view[float32](kernel), g, cpu.par) },
		func() { conv2d(view[float64](out), view[float64](input), view[float64](kernel), g, cpu.par) },
	)
	return out
}

func conv2d[E float](out, input, kernel []E, g convGeom, cfg parallel.Config) {
	parallel.For(g.n, func(n int) {
		col := make([]E, g.colLen*g.colWidth)
		im2col(col, input[n*g.cIn*g.h*g.w:(n+1)*g.cIn*g.h*g.w], g)
		dst := out[n*g.cOut*g.colLen : (n+1)*g.cOut*g.colLen]
		for co := 0; co < g.cOut; co++ {
			krow := kernel[co*g.colWidth : (co+1)*g.colWidth]
			for p := 0; p < g.colLen; p++ {
				patch := col[p*g.colWidth : (p+1)*g.colWidth]
				var sum E
				for k, kv := range krow {
					sum += kv * patch[k]
				}
				dst[co*g.colLen+p] = sum
			}
		}
	}, cfg)
}

// im2col unrolls one sample [C, H, W] into col [H_out*W_out, C*K_h*K_w].
// Positions that fall in the padding read as zero.
func im2col[E float](col, sample []E, g convGeom) {
	row := 0
	for oh := 0; oh < g.hOut; oh++ {
		for ow := 0; ow < g.wOut; ow++ {
			hStart := oh*g.stride - g.pad.Top
			wStart := ow*g.stride - g.pad.Left
			idx := row * g.colWidth
			for c := 0; c < g.cIn; c++ {
				for kh := 0; kh < g.kh; kh++ {
					h := hStart + kh
					for kw := 0; kw < g.kw; kw++ {
						w := wStart + kw
						if h >= 0 && h < g.h && w >= 0 && w < g.w {
							col[idx] = sample[c*g.h*g.w+h*g.w+w]
						} else {
							col[idx] = 0
						}
						idx++
					}
				}
			}
			row++
		}
	}
}

// col2im is the adjoint of im2col: it scatter-adds col back into a
// [C, H, W] sample, dropping contributions that land in the padding.
func col2im[E float](sample, col []E, g convGeom) {
	row := 0
	for oh := 0; oh < g.hOut; oh++ {
		for ow := 0; ow < g.wOut; ow++ {
			hStart := oh*g.stride - g.pad.Top
			wStart := ow*g.stride - g.pad.Left
			idx := row * g.colWidth
			for c := 0; c < g.cIn; c++ {
				for kh := 0; kh < g.kh; kh++ {
					h := hStart + kh
					for kw := 0; kw < g.kw; kw++ {
						w := wStart + kw
						if h >= 0 && h < g.h && w >= 0 && w < g.w {
							sample[c*g.h*g.w+h*g.w+w] += col[idx]
						}
						idx++
					}
				}
			}
			row++
		}
	}
}
