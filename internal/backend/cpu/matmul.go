package cpu

import (
	"fmt"

	"github.com/born-ml/progan/internal/parallel"
	"github.com/born-ml/progan/internal/tensor"
)

// MatMul multiplies [M,K] @ [K,N] → [M,N].
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	sameDType("matmul", a, b)
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: incompatible shapes %v @ %v", as, bs))
	}
	m, k, n := as[0], as[1], bs[1]
	out := cpu.alloc("matmul", tensor.Shape{m, n}, a.DType())
	dispatch("matmul", a.DType(),
		func() { matmul(view[float32](out), view[float32](a), view[float32](b), m, k, n, cpu.par) },
		func() { matmul(view[float64](out), view[float64](a), view[float64](b), m, k, n, cpu.par) },
	)
	return out
}

// matmul uses i-k-j loop order so the inner loop walks both b and c
// contiguously.
func matmul[E float](c, a, b []E, m, k, n int, cfg parallel.Config) {
	parallel.For(m, func(i int) {
		row := c[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			av := a[i*k+p]
			if av == 0 {
				continue
			}
			brow := b[p*n : (p+1)*n]
			for j := range row {
				row[j] += av * brow[j]
			}
		}
	}, cfg)
}
