package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeBasics(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.NoError(t, s.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Equal(t, 2, s.NormalizeDim(-1))
	assert.Panics(t, func() { s.NormalizeDim(3) })

	c := s.Clone()
	c[0] = 9
	assert.Equal(t, 2, s[0])
	assert.Equal(t, Shape{}, Shape(nil).Clone())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		wantNeeds bool
		wantErr   bool
	}{
		{"same", Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, false, false},
		{"bias", Shape{4, 3}, Shape{3}, Shape{4, 3}, true, false},
		{"column", Shape{3, 1}, Shape{3, 4}, Shape{3, 4}, true, false},
		{"scalar", Shape{}, Shape{2, 2}, Shape{2, 2}, true, false},
		{"both", Shape{2, 1, 4}, Shape{3, 1}, Shape{2, 3, 4}, true, false},
		{"incompatible", Shape{2, 3}, Shape{4}, nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, needs, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantNeeds, needs)
		})
	}
}

func TestRawViewsShareStorage(t *testing.T) {
	r, err := NewRaw(Shape{2, 3}, Float32, CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), []float32{1, 2, 3, 4, 5, 6})

	v := r.WithShape(Shape{3, 2})
	assert.Equal(t, Shape{3, 2}, v.Shape())
	assert.Equal(t, []int{2, 1}, v.Strides())
	v.AsFloat32()[0] = 10
	assert.Equal(t, float32(10), r.AsFloat32()[0])

	c := r.Clone()
	c.AsFloat32()[1] = 20
	assert.Equal(t, float32(2), r.AsFloat32()[1])

	assert.Panics(t, func() { r.WithShape(Shape{4}) })

	_, err = NewRaw(Shape{2, -1}, Float32, CPU)
	assert.Error(t, err)
}

func TestPadding(t *testing.T) {
	assert.Equal(t, Padding{Top: 1, Bottom: 2, Left: 1, Right: 2}, SamePadding(4, 4))
	assert.True(t, SamePadding(3, 3).Symmetric())
	assert.False(t, SamePadding(4, 4).Symmetric())
	assert.Equal(t, Padding{Top: 0, Bottom: 1, Left: 1, Right: 1}, SamePadding(2, 3))
}
