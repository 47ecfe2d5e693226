package nn

import (
	"fmt"

	"github.com/born-ml/progan/internal/tensor"
)

// Conv2D is a stride-1 2D convolution with "same" padding and a bias.
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [filters, in_channels, k, k]
// Output shape: [batch, filters, height, width]
//
// For even kernel sizes the extra padding row/column is added at the
// bottom/right, so a 4×4 kernel on a 4×4 map keeps the map 4×4.
//
// Example:
//
//	conv := nn.NewConv2D("g4_conv1", 128, 128, 3, wc, backend)
//	out := conv.Forward(x) // [N, 128, H, W]
type Conv2D[B tensor.Backend] struct {
	name       string
	inChannels int
	filters    int
	kernelSize int
	pad        tensor.Padding
	kernel     *Parameter[B]
	bias       *Parameter[B]
	backend    B
}

// NewConv2D creates a convolution whose kernel is drawn from w.Init and
// bounded by w.Constraint. The bias starts at zero and is unconstrained.
func NewConv2D[B tensor.Backend](name string, inChannels, filters, kernelSize int, w WeightConfig, backend B) *Conv2D[B] {
	if inChannels <= 0 || filters <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, filters=%d", inChannels, filters))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size %d", kernelSize))
	}

	k := tensor.Zeros[float32](tensor.Shape{filters, inChannels, kernelSize, kernelSize}, backend)
	area := kernelSize * kernelSize
	w.Init.Fill(k.Data(), inChannels*area, filters*area)

	return &Conv2D[B]{
		name:       name,
		inChannels: inChannels,
		filters:    filters,
		kernelSize: kernelSize,
		pad:        tensor.SamePadding(kernelSize, kernelSize),
		kernel:     NewConstrainedParameter(name+".kernel", k, w.Constraint),
		bias:       NewParameter(name+".bias", tensor.Zeros[float32](tensor.Shape{filters}, backend)),
		backend:    backend,
	}
}

// Name returns the layer name.
func (c *Conv2D[B]) Name() string { return c.name }

// Kind returns "Conv2D".
func (c *Conv2D[B]) Kind() string { return "Conv2D" }

// ComputeOutputShape maps (in_channels, H, W) to (filters, H, W).
func (c *Conv2D[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	in, err := image(c.name, inputs)
	if err != nil {
		return nil, err
	}
	if in[0] != c.inChannels {
		return nil, shapeErr(c.name, "expected %d input channels, got %d", c.inChannels, in[0])
	}
	return tensor.Shape{c.filters, in[1], in[2]}, nil
}

// Forward convolves the single input and adds the bias.
func (c *Conv2D[B]) Forward(inputs ...*Float32[B]) *Float32[B] {
	x := mustOne(c.name, inputs)
	out := tensor.New[float32](c.backend.Conv2D(x.Raw(), c.kernel.Tensor().Raw(), 1, c.pad), c.backend)
	return out.Add(c.bias.Tensor().Reshape(1, c.filters, 1, 1))
}

// Parameters returns the kernel and bias.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.kernel, c.bias}
}

// Kernel returns the kernel parameter.
func (c *Conv2D[B]) Kernel() *Parameter[B] { return c.kernel }

// Filters returns the number of output channels.
func (c *Conv2D[B]) Filters() int { return c.filters }

// KernelSize returns the side of the square kernel.
func (c *Conv2D[B]) KernelSize() int { return c.kernelSize }

func (c *Conv2D[B]) String() string {
	return fmt.Sprintf("Conv2D(%s, in_channels=%d, filters=%d, kernel_size=%d)",
		c.name, c.inChannels, c.filters, c.kernelSize)
}
