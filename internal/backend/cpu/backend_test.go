package cpu

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/progan/internal/parallel"
	"github.com/born-ml/progan/internal/tensor"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

func raw32(t *testing.T, shape tensor.Shape, data ...float32) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func randRaw64(rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
	r := tensor.MustNewRaw(shape, tensor.Float64, tensor.CPU)
	for i := range r.AsFloat64() {
		r.AsFloat64()[i] = rng.NormFloat64()
	}
	return r
}

func dot(a, b *tensor.RawTensor) float64 {
	var s float64
	bd := b.AsFloat64()
	for i, v := range a.AsFloat64() {
		s += v * bd[i]
	}
	return s
}

func TestCPUBackend_New(t *testing.T) {
	backend := New()
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestCPUBackend_Elementwise(t *testing.T) {
	backend := New()
	a := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	tests := []struct {
		name  string
		got   *tensor.RawTensor
		shape tensor.Shape
		want  []float32
	}{
		{"add same shape", backend.Add(a, raw32(t, tensor.Shape{2, 3}, 10, 11, 12, 13, 14, 15)),
			tensor.Shape{2, 3}, []float32{11, 13, 15, 17, 19, 21}},
		{"add row broadcast", backend.Add(a, raw32(t, tensor.Shape{3}, 1, 2, 3)),
			tensor.Shape{2, 3}, []float32{2, 4, 6, 5, 7, 9}},
		{"sub column broadcast", backend.Sub(a, raw32(t, tensor.Shape{2, 1}, 1, 4)),
			tensor.Shape{2, 3}, []float32{0, 1, 2, 0, 1, 2}},
		{"mul outer", backend.Mul(raw32(t, tensor.Shape{2, 1}, 2, 3), raw32(t, tensor.Shape{1, 3}, 1, 10, 100)),
			tensor.Shape{2, 3}, []float32{2, 20, 200, 3, 30, 300}},
		{"div scalar tensor", backend.Div(a, raw32(t, tensor.Shape{}, 2)),
			tensor.Shape{2, 3}, []float32{0.5, 1, 1.5, 2, 2.5, 3}},
		{"mul scalar", backend.MulScalar(a, -1), tensor.Shape{2, 3}, []float32{-1, -2, -3, -4, -5, -6}},
		{"add scalar", backend.AddScalar(a, 0.5), tensor.Shape{2, 3}, []float32{1.5, 2.5, 3.5, 4.5, 5.5, 6.5}},
		{"sqrt", backend.Sqrt(raw32(t, tensor.Shape{3}, 1, 4, 9)), tensor.Shape{3}, []float32{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shape, tt.got.Shape())
			if diff := cmp.Diff(tt.want, tt.got.AsFloat32(), approx); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}

	// Inputs are never modified.
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, a.AsFloat32())
}

func TestCPUBackend_ElementwisePanics(t *testing.T) {
	backend := New()
	assert.PanicsWithValue(t,
		"add: shapes not compatible for broadcasting: [2 3] vs [2] (dimension 1: 3 vs 2)",
		func() { backend.Add(raw32(t, tensor.Shape{2, 3}), raw32(t, tensor.Shape{2})) })

	f64 := tensor.MustNewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
	assert.Panics(t, func() { backend.Mul(raw32(t, tensor.Shape{2}), f64) })
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := NewWithConfig(parallel.Sequential())
	a := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	b := raw32(t, tensor.Shape{3, 2}, 7, 8, 9, 10, 11, 12)

	c := backend.MatMul(a, b)
	require.Equal(t, tensor.Shape{2, 2}, c.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, c.AsFloat32())

	assert.Panics(t, func() { backend.MatMul(a, a) })
}

func TestCPUBackend_ShapeOps(t *testing.T) {
	backend := New()
	a := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	t.Run("reshape", func(t *testing.T) {
		r := backend.Reshape(a, tensor.Shape{3, 2})
		assert.Equal(t, tensor.Shape{3, 2}, r.Shape())
		assert.Equal(t, a.AsFloat32(), r.AsFloat32())
		assert.Panics(t, func() { backend.Reshape(a, tensor.Shape{4}) })
	})

	t.Run("transpose", func(t *testing.T) {
		r := backend.Transpose(a)
		assert.Equal(t, tensor.Shape{3, 2}, r.Shape())
		assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, r.AsFloat32())
	})

	t.Run("transpose axes", func(t *testing.T) {
		x := raw32(t, tensor.Shape{1, 2, 3}, 1, 2, 3, 4, 5, 6)
		r := backend.Transpose(x, 2, 0, 1)
		assert.Equal(t, tensor.Shape{3, 1, 2}, r.Shape())
		assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, r.AsFloat32())
	})

	t.Run("expand", func(t *testing.T) {
		x := raw32(t, tensor.Shape{2, 1}, 7, 8)
		r := backend.Expand(x, tensor.Shape{3, 2, 2})
		assert.Equal(t, []float32{7, 7, 8, 8, 7, 7, 8, 8, 7, 7, 8, 8}, r.AsFloat32())
		assert.Panics(t, func() { backend.Expand(a, tensor.Shape{2, 2}) })
	})

	t.Run("cat channels", func(t *testing.T) {
		x := raw32(t, tensor.Shape{2, 2, 1, 1}, 1, 2, 3, 4)
		y := raw32(t, tensor.Shape{2, 1, 1, 1}, 9, 10)
		r := backend.Cat([]*tensor.RawTensor{x, y}, 1)
		assert.Equal(t, tensor.Shape{2, 3, 1, 1}, r.Shape())
		assert.Equal(t, []float32{1, 2, 9, 3, 4, 10}, r.AsFloat32())
	})

	t.Run("cat mismatch", func(t *testing.T) {
		assert.Panics(t, func() {
			backend.Cat([]*tensor.RawTensor{a, raw32(t, tensor.Shape{3, 3})}, 1)
		})
	})
}

func TestCPUBackend_Reductions(t *testing.T) {
	backend := New()
	a := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	sum := backend.Sum(a)
	assert.Equal(t, tensor.Shape{}, sum.Shape())
	assert.InDelta(t, 21, sum.AsFloat32()[0], 1e-6)

	s0 := backend.SumDim(a, 0, false)
	assert.Equal(t, tensor.Shape{3}, s0.Shape())
	assert.Equal(t, []float32{5, 7, 9}, s0.AsFloat32())

	m1 := backend.MeanDim(a, -1, true)
	assert.Equal(t, tensor.Shape{2, 1}, m1.Shape())
	assert.Equal(t, []float32{2, 5}, m1.AsFloat32())

	assert.Panics(t, func() { backend.SumDim(a, 2, false) })
}

func TestCPUBackend_LeakyReLU(t *testing.T) {
	backend := New()
	x := raw32(t, tensor.Shape{4}, -2, -0.5, 0, 3)

	y := backend.LeakyReLU(x, 0.2)
	if diff := cmp.Diff([]float32{-0.4, -0.1, 0, 3}, y.AsFloat32(), approx); diff != "" {
		t.Errorf("forward mismatch (-want +got):\n%s", diff)
	}

	g := backend.LeakyReLUBackward(x, raw32(t, tensor.Shape{4}, 1, 1, 1, 1), 0.2)
	if diff := cmp.Diff([]float32{0.2, 0.2, 0.2, 1}, g.AsFloat32(), approx); diff != "" {
		t.Errorf("backward mismatch (-want +got):\n%s", diff)
	}
}
