package nn

import (
	"fmt"

	"github.com/born-ml/progan/internal/tensor"
)

// Dense is a fully connected layer: y = x @ Wᵀ + b.
//
// Input shape:  [batch, in_features]
// Kernel shape: [units, in_features]
// Output shape: [batch, units]
type Dense[B tensor.Backend] struct {
	name       string
	inFeatures int
	units      int
	kernel     *Parameter[B]
	bias       *Parameter[B]
}

// NewDense creates a dense layer whose kernel comes from w.
func NewDense[B tensor.Backend](name string, inFeatures, units int, w WeightConfig, backend B) *Dense[B] {
	if inFeatures <= 0 || units <= 0 {
		panic(fmt.Sprintf("dense: invalid dimensions in=%d, units=%d", inFeatures, units))
	}
	k := tensor.Zeros[float32](tensor.Shape{units, inFeatures}, backend)
	w.Init.Fill(k.Data(), inFeatures, units)

	return &Dense[B]{
		name:       name,
		inFeatures: inFeatures,
		units:      units,
		kernel:     NewConstrainedParameter(name+".kernel", k, w.Constraint),
		bias:       NewParameter(name+".bias", tensor.Zeros[float32](tensor.Shape{units}, backend)),
	}
}

// Name returns the layer name.
func (d *Dense[B]) Name() string { return d.name }

// Kind returns "Dense".
func (d *Dense[B]) Kind() string { return "Dense" }

// ComputeOutputShape maps (in_features) to (units).
func (d *Dense[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	in, err := single(d.name, inputs)
	if err != nil {
		return nil, err
	}
	if len(in) != 1 || in[0] != d.inFeatures {
		return nil, shapeErr(d.name, "expected (%d), got %v", d.inFeatures, in)
	}
	return tensor.Shape{d.units}, nil
}

// Forward computes x @ Wᵀ + b.
func (d *Dense[B]) Forward(inputs ...*Float32[B]) *Float32[B] {
	x := mustOne(d.name, inputs)
	return x.MatMul(d.kernel.Tensor().Transpose()).Add(d.bias.Tensor())
}

// Parameters returns the kernel and bias.
func (d *Dense[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{d.kernel, d.bias}
}

// Kernel returns the kernel parameter.
func (d *Dense[B]) Kernel() *Parameter[B] { return d.kernel }

// Units returns the output width.
func (d *Dense[B]) Units() int { return d.units }

func (d *Dense[B]) String() string {
	return fmt.Sprintf("Dense(%s, in_features=%d, units=%d)", d.name, d.inFeatures, d.units)
}
