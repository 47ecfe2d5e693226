package nn

import (
	"github.com/born-ml/progan/internal/tensor"
)

// UpSampling2D doubles height and width by repeating every pixel.
type UpSampling2D[B tensor.Backend] struct {
	name string
}

// NewUpSampling2D creates a ×2 nearest-neighbour upsampler.
func NewUpSampling2D[B tensor.Backend](name string) *UpSampling2D[B] {
	return &UpSampling2D[B]{name: name}
}

// Name returns the layer name.
func (u *UpSampling2D[B]) Name() string { return u.name }

// Kind returns "UpSampling2D".
func (u *UpSampling2D[B]) Kind() string { return "UpSampling2D" }

// ComputeOutputShape maps (C, H, W) to (C, 2H, 2W).
func (u *UpSampling2D[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	in, err := image(u.name, inputs)
	if err != nil {
		return nil, err
	}
	return tensor.Shape{in[0], 2 * in[1], 2 * in[2]}, nil
}

// Forward upsamples.
func (u *UpSampling2D[B]) Forward(inputs ...*Float32[B]) *Float32[B] {
	x := mustOne(u.name, inputs)
	return tensor.New[float32](x.Backend().Upsample2D(x.Raw(), 2), x.Backend())
}

// Parameters returns nil.
func (u *UpSampling2D[B]) Parameters() []*Parameter[B] { return nil }

func (u *UpSampling2D[B]) String() string { return "UpSampling2D(" + u.name + ")" }

// AveragePooling2D halves height and width by averaging 2×2 windows.
type AveragePooling2D[B tensor.Backend] struct {
	name string
}

// NewAveragePooling2D creates a 2×2, stride-2 average pool.
func NewAveragePooling2D[B tensor.Backend](name string) *AveragePooling2D[B] {
	return &AveragePooling2D[B]{name: name}
}

// Name returns the layer name.
func (a *AveragePooling2D[B]) Name() string { return a.name }

// Kind returns "AveragePooling2D".
func (a *AveragePooling2D[B]) Kind() string { return "AveragePooling2D" }

// ComputeOutputShape maps (C, H, W) to (C, H/2, W/2).
func (a *AveragePooling2D[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	in, err := image(a.name, inputs)
	if err != nil {
		return nil, err
	}
	if in[1] < 2 || in[2] < 2 {
		return nil, shapeErr(a.name, "input %v smaller than the 2x2 pool", in)
	}
	return tensor.Shape{in[0], in[1] / 2, in[2] / 2}, nil
}

// Forward pools.
func (a *AveragePooling2D[B]) Forward(inputs ...*Float32[B]) *Float32[B] {
	x := mustOne(a.name, inputs)
	return tensor.New[float32](x.Backend().AvgPool2D(x.Raw(), 2, 2), x.Backend())
}

// Parameters returns nil.
func (a *AveragePooling2D[B]) Parameters() []*Parameter[B] { return nil }

func (a *AveragePooling2D[B]) String() string { return "AveragePooling2D(" + a.name + ")" }
