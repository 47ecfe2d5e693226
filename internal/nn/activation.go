package nn

import (
	"fmt"

	"github.com/born-ml/progan/internal/tensor"
)

// LeakyReLU passes positive values and scales negative ones by Alpha.
type LeakyReLU[B tensor.Backend] struct {
	name  string
	alpha float64
}

// NewLeakyReLU creates a LeakyReLU with the given negative slope.
func NewLeakyReLU[B tensor.Backend](name string, alpha float64) *LeakyReLU[B] {
	return &LeakyReLU[B]{name: name, alpha: alpha}
}

// Name returns the layer name.
func (l *LeakyReLU[B]) Name() string { return l.name }

// Kind returns "LeakyReLU".
func (l *LeakyReLU[B]) Kind() string { return "LeakyReLU" }

// Alpha returns the negative slope.
func (l *LeakyReLU[B]) Alpha() float64 { return l.alpha }

// ComputeOutputShape returns the input shape.
func (l *LeakyReLU[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	return single(l.name, inputs)
}

// Forward applies the activation element-wise.
func (l *LeakyReLU[B]) Forward(inputs ...*Float32[B]) *Float32[B] {
	x := mustOne(l.name, inputs)
	return tensor.New[float32](x.Backend().LeakyReLU(x.Raw(), l.alpha), x.Backend())
}

// Parameters returns nil.
func (l *LeakyReLU[B]) Parameters() []*Parameter[B] { return nil }

func (l *LeakyReLU[B]) String() string { return fmt.Sprintf("LeakyReLU(%s, alpha=%g)", l.name, l.alpha) }
