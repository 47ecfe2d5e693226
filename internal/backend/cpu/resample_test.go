package cpu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/progan/internal/tensor"
)

func TestAvgPool2D(t *testing.T) {
	backend := New()
	input := raw32(t, tensor.Shape{1, 1, 4, 4},
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	)

	out := backend.AvgPool2D(input, 2, 2)
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assert.Equal(t, []float32{3.5, 5.5, 11.5, 13.5}, out.AsFloat32())

	grad := backend.AvgPool2DBackward(raw32(t, tensor.Shape{1, 1, 2, 2}, 4, 8, 0, 4), input.Shape(), 2, 2)
	assert.Equal(t, []float32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		0, 0, 1, 1,
		0, 0, 1, 1,
	}, grad.AsFloat32())

	assert.Panics(t, func() { backend.AvgPool2D(raw32(t, tensor.Shape{1, 1, 1, 1}), 2, 2) })
}

func TestUpsample2D(t *testing.T) {
	backend := New()
	input := raw32(t, tensor.Shape{1, 1, 2, 2}, 1, 2, 3, 4)

	out := backend.Upsample2D(input, 2)
	require.Equal(t, tensor.Shape{1, 1, 4, 4}, out.Shape())
	assert.Equal(t, []float32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, out.AsFloat32())

	grad := backend.Upsample2DBackward(out, 2)
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, grad.Shape())
	assert.Equal(t, []float32{4, 8, 12, 16}, grad.AsFloat32())
}

func TestResample_BackwardMatchesFiniteDifference(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(3))

	x := randRaw64(rng, tensor.Shape{2, 3, 4, 4})
	r := randRaw64(rng, tensor.Shape{2, 3, 2, 2})
	checkFiniteDiff(t, "avgpool", x, backend.AvgPool2DBackward(r, x.Shape(), 2, 2),
		func() float64 { return dot(backend.AvgPool2D(x, 2, 2), r) })

	u := randRaw64(rng, tensor.Shape{2, 3, 8, 8})
	checkFiniteDiff(t, "upsample", x, backend.Upsample2DBackward(u, 2),
		func() float64 { return dot(backend.Upsample2D(x, 2), u) })
}
