package nn

import (
	"fmt"

	"github.com/born-ml/progan/internal/tensor"
)

// Flatten collapses every per-sample dimension into one.
type Flatten[B tensor.Backend] struct {
	name string
}

// NewFlatten creates a Flatten layer.
func NewFlatten[B tensor.Backend](name string) *Flatten[B] {
	return &Flatten[B]{name: name}
}

// Name returns the layer name.
func (f *Flatten[B]) Name() string { return f.name }

// Kind returns "Flatten".
func (f *Flatten[B]) Kind() string { return "Flatten" }

// ComputeOutputShape returns (product of the input dimensions).
func (f *Flatten[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	in, err := single(f.name, inputs)
	if err != nil {
		return nil, err
	}
	return tensor.Shape{in.NumElements()}, nil
}

// Forward reshapes [N, ...] to [N, prod(...)].
func (f *Flatten[B]) Forward(inputs ...*Float32[B]) *Float32[B] {
	x := mustOne(f.name, inputs)
	n := x.Shape()[0]
	return x.Reshape(n, x.NumElements()/n)
}

// Parameters returns nil.
func (f *Flatten[B]) Parameters() []*Parameter[B] { return nil }

func (f *Flatten[B]) String() string { return "Flatten(" + f.name + ")" }

// Reshape gives every sample a fixed target shape.
type Reshape[B tensor.Backend] struct {
	name   string
	target tensor.Shape
}

// NewReshape creates a Reshape layer with a per-sample target shape.
func NewReshape[B tensor.Backend](name string, target ...int) *Reshape[B] {
	t := tensor.Shape(target)
	if err := t.Validate(); err != nil || len(t) == 0 {
		panic(fmt.Sprintf("reshape: invalid target shape %v", target))
	}
	return &Reshape[B]{name: name, target: t.Clone()}
}

// Name returns the layer name.
func (r *Reshape[B]) Name() string { return r.name }

// Kind returns "Reshape".
func (r *Reshape[B]) Kind() string { return "Reshape" }

// ComputeOutputShape returns the target shape if sizes agree.
func (r *Reshape[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	in, err := single(r.name, inputs)
	if err != nil {
		return nil, err
	}
	if in.NumElements() != r.target.NumElements() {
		return nil, shapeErr(r.name, "cannot reshape %v to %v", in, r.target)
	}
	return r.target.Clone(), nil
}

// Forward reshapes [N, ...] to [N, target...].
func (r *Reshape[B]) Forward(inputs ...*Float32[B]) *Float32[B] {
	x := mustOne(r.name, inputs)
	return x.Reshape(batched(x.Shape()[0], r.target)...)
}

// Parameters returns nil.
func (r *Reshape[B]) Parameters() []*Parameter[B] { return nil }

func (r *Reshape[B]) String() string { return fmt.Sprintf("Reshape(%s, %v)", r.name, r.target) }
