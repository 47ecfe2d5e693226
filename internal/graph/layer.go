// Package graph builds functional layer graphs: nodes are applications of
// layers to other nodes, and a Model is the subgraph between one input node
// and one output node.
//
// Layers are held by pointer. Applying the same layer object in several
// graphs makes every model containing it read and update the same weights,
// which is how progressive-growing stages share everything but their new
// block.
//
// Example:
//
//	in := graph.Input[B]("latent", 100)
//	h, err := graph.Apply(dense, in)
//	...
//	m, err := graph.NewModel("generator", in, out)
package graph

import (
	"errors"
	"fmt"

	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/tensor"
)

var (
	// ErrShapeMismatch is returned when a layer cannot accept its inputs.
	ErrShapeMismatch = nn.ErrShapeMismatch

	// ErrDisconnected is returned when a model's output does not depend on
	// exactly its input.
	ErrDisconnected = errors.New("graph disconnected")

	// ErrNotCompiled is returned by TrainOnBatch before Compile.
	ErrNotCompiled = errors.New("model not compiled")

	// ErrNoGradients is returned by TrainOnBatch when the tensors' backend
	// cannot record a gradient tape.
	ErrNoGradients = errors.New("backend does not record gradients")
)

// Layer is anything that can be applied to nodes.
//
// Shapes passed to ComputeOutputShape are per-sample: the batch dimension
// is omitted. Forward receives batched tensors in the same order as the
// node's inputs.
type Layer[B tensor.Backend] interface {
	Name() string
	ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error)
	Forward(inputs ...*nn.Float32[B]) *nn.Float32[B]
	Parameters() []*nn.Parameter[B]
}

// kind returns a short type name for summaries.
func kind[B tensor.Backend](l Layer[B]) string {
	if k, ok := l.(interface{ Kind() string }); ok {
		return k.Kind()
	}
	return fmt.Sprintf("%T", l)
}

// InputLayer is the source of a graph. It passes its input through.
type InputLayer[B tensor.Backend] struct {
	name  string
	shape tensor.Shape
}

// Name returns the layer name.
func (l *InputLayer[B]) Name() string { return l.name }

// Kind returns "InputLayer".
func (l *InputLayer[B]) Kind() string { return "InputLayer" }

// Shape returns the per-sample input shape.
func (l *InputLayer[B]) Shape() tensor.Shape { return l.shape }

// ComputeOutputShape returns the declared shape.
func (l *InputLayer[B]) ComputeOutputShape(...tensor.Shape) (tensor.Shape, error) {
	return l.shape.Clone(), nil
}

// Forward returns its only input.
func (l *InputLayer[B]) Forward(inputs ...*nn.Float32[B]) *nn.Float32[B] {
	if len(inputs) != 1 {
		panic(fmt.Sprintf("%s: expected 1 input, got %d", l.name, len(inputs)))
	}
	return inputs[0]
}

// Parameters returns nil.
func (l *InputLayer[B]) Parameters() []*nn.Parameter[B] { return nil }

// FrozenLayer wraps a layer so that models containing it do not train its
// parameters. Gradients still flow through it to earlier layers.
type FrozenLayer[B tensor.Backend] struct {
	inner Layer[B]
}

// Frozen wraps layer. The wrapped layer itself is unchanged: other graphs
// that apply it directly still train it.
func Frozen[B tensor.Backend](layer Layer[B]) *FrozenLayer[B] {
	return &FrozenLayer[B]{inner: layer}
}

// Name returns the wrapped layer's name.
func (f *FrozenLayer[B]) Name() string { return f.inner.Name() }

// Kind returns the wrapped layer's kind.
func (f *FrozenLayer[B]) Kind() string { return kind(f.inner) }

// Unwrap returns the wrapped layer.
func (f *FrozenLayer[B]) Unwrap() Layer[B] { return f.inner }

// Trainable reports false.
func (f *FrozenLayer[B]) Trainable() bool { return false }

// ComputeOutputShape delegates to the wrapped layer.
func (f *FrozenLayer[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	return f.inner.ComputeOutputShape(inputs...)
}

// Forward delegates to the wrapped layer.
func (f *FrozenLayer[B]) Forward(inputs ...*nn.Float32[B]) *nn.Float32[B] {
	return f.inner.Forward(inputs...)
}

// Parameters returns the wrapped layer's parameters. They are counted in
// summaries but excluded from TrainableParameters.
func (f *FrozenLayer[B]) Parameters() []*nn.Parameter[B] { return f.inner.Parameters() }
