package graph

import (
	"fmt"

	"github.com/born-ml/progan/internal/tensor"
)

// Node is one application of a layer to input nodes.
type Node[B tensor.Backend] struct {
	layer  Layer[B]
	inputs []*Node[B]
	shape  tensor.Shape
}

// Input creates a source node with a per-sample shape.
func Input[B tensor.Backend](name string, shape ...int) *Node[B] {
	s := tensor.Shape(shape).Clone()
	if err := s.Validate(); err != nil || len(s) == 0 {
		panic(fmt.Sprintf("input %s: invalid shape %v", name, shape))
	}
	return &Node[B]{layer: &InputLayer[B]{name: name, shape: s}, shape: s}
}

// Apply connects layer to inputs, checking that the layer accepts their
// shapes. The error wraps ErrShapeMismatch.
func Apply[B tensor.Backend](layer Layer[B], inputs ...*Node[B]) (*Node[B], error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("apply %s: %w: no inputs", layer.Name(), ErrShapeMismatch)
	}
	shapes := make([]tensor.Shape, len(inputs))
	for i, in := range inputs {
		shapes[i] = in.shape
	}
	out, err := layer.ComputeOutputShape(shapes...)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", layer.Name(), err)
	}
	return &Node[B]{layer: layer, inputs: append([]*Node[B](nil), inputs...), shape: out}, nil
}

// Layer returns the applied layer.
func (n *Node[B]) Layer() Layer[B] { return n.layer }

// Inputs returns the nodes this node was applied to.
func (n *Node[B]) Inputs() []*Node[B] { return n.inputs }

// Shape returns the per-sample output shape.
func (n *Node[B]) Shape() tensor.Shape { return n.shape }

// IsInput reports whether n is a source node.
func (n *Node[B]) IsInput() bool { return len(n.inputs) == 0 }

func (n *Node[B]) String() string {
	return fmt.Sprintf("%s%v", n.layer.Name(), n.shape)
}
