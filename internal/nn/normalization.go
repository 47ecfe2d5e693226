package nn

import (
	"github.com/born-ml/progan/internal/tensor"
)

// PixelNormEpsilon keeps the denominator of PixelNorm away from zero.
const PixelNormEpsilon = 1e-8

// PixelNorm normalizes every pixel's feature vector to unit average
// magnitude:
//
//	y = x / sqrt(mean_c(x²) + ε)
//
// where the mean runs over the channel dimension at each (n, h, w).
type PixelNorm[B tensor.Backend] struct {
	name string
}

// NewPixelNorm creates a PixelNorm layer.
func NewPixelNorm[B tensor.Backend](name string) *PixelNorm[B] {
	return &PixelNorm[B]{name: name}
}

// Name returns the layer name.
func (p *PixelNorm[B]) Name() string { return p.name }

// Kind returns "PixelNorm".
func (p *PixelNorm[B]) Kind() string { return "PixelNorm" }

// ComputeOutputShape returns the (C, H, W) input shape unchanged.
func (p *PixelNorm[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	return image(p.name, inputs)
}

// Forward normalizes across channels.
func (p *PixelNorm[B]) Forward(inputs ...*Float32[B]) *Float32[B] {
	x := mustOne(p.name, inputs)
	return x.Div(x.Mul(x).MeanDim(1, true).AddScalar(PixelNormEpsilon).Sqrt())
}

// Parameters returns nil.
func (p *PixelNorm[B]) Parameters() []*Parameter[B] { return nil }

func (p *PixelNorm[B]) String() string { return "PixelNorm(" + p.name + ")" }

// MiniBatchStdevEpsilon is added to the per-position variance before the
// square root.
const MiniBatchStdevEpsilon = 1e-8

// MiniBatchStdev appends one feature map summarizing how much the samples
// of a batch differ from each other.
//
// For an [N, C, H, W] input:
//
//	std[c,h,w] = sqrt(mean_n((x - mean_n x)²) + ε)
//	s          = mean_{c,h,w}(std)
//
// and the output is the input with a constant channel filled with s,
// giving [N, C+1, H, W].
type MiniBatchStdev[B tensor.Backend] struct {
	name string
}

// NewMiniBatchStdev creates a MiniBatchStdev layer.
func NewMiniBatchStdev[B tensor.Backend](name string) *MiniBatchStdev[B] {
	return &MiniBatchStdev[B]{name: name}
}

// Name returns the layer name.
func (m *MiniBatchStdev[B]) Name() string { return m.name }

// Kind returns "MiniBatchStdev".
func (m *MiniBatchStdev[B]) Kind() string { return "MiniBatchStdev" }

// ComputeOutputShape maps (C, H, W) to (C+1, H, W).
func (m *MiniBatchStdev[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	in, err := image(m.name, inputs)
	if err != nil {
		return nil, err
	}
	return tensor.Shape{in[0] + 1, in[1], in[2]}, nil
}

// Forward appends the batch standard-deviation channel.
func (m *MiniBatchStdev[B]) Forward(inputs ...*Float32[B]) *Float32[B] {
	x := mustOne(m.name, inputs)
	s := x.Shape()

	dev := x.Sub(x.MeanDim(0, true))
	std := dev.Mul(dev).MeanDim(0, true).AddScalar(MiniBatchStdevEpsilon).Sqrt()
	avg := std.MeanDim(1, true).MeanDim(2, true).MeanDim(3, true)
	stat := avg.Expand(tensor.Shape{s[0], 1, s[2], s[3]})

	return tensor.Cat([]*Float32[B]{x, stat}, 1)
}

// Parameters returns nil.
func (m *MiniBatchStdev[B]) Parameters() []*Parameter[B] { return nil }

func (m *MiniBatchStdev[B]) String() string { return "MiniBatchStdev(" + m.name + ")" }
