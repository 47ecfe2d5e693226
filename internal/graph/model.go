package graph

import (
	"fmt"

	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/tensor"
)

// Model is the subgraph between one input node and one output node.
//
// A Model is itself a Layer, so it can be applied inside a larger graph.
// Its layers stay shared with every other graph they appear in.
type Model[B tensor.Backend] struct {
	name   string
	input  *Node[B]
	output *Node[B]
	nodes  []*Node[B] // topological order, input first
	layers []Layer[B] // unique, input layer first

	loss nn.Loss[B]
	opt  Optimizer
}

// NewModel collects every node between input and output.
//
// It fails with ErrDisconnected when output does not depend on input, or
// when it depends on another source node.
func NewModel[B tensor.Backend](name string, input, output *Node[B]) (*Model[B], error) {
	if input == nil || output == nil {
		return nil, fmt.Errorf("model %s: %w: nil endpoint", name, ErrDisconnected)
	}
	if !input.IsInput() {
		return nil, fmt.Errorf("model %s: %w: %s is not an input node", name, ErrDisconnected, input)
	}

	var (
		order   []*Node[B]
		visited = make(map[*Node[B]]bool)
		walk    func(n *Node[B]) error
	)
	walk = func(n *Node[B]) error {
		if visited[n] {
			return nil
		}
		visited[n] = true
		if n.IsInput() && n != input {
			return fmt.Errorf("model %s: %w: %s depends on foreign input %s", name, ErrDisconnected, output, n)
		}
		for _, in := range n.inputs {
			if err := walk(in); err != nil {
				return err
			}
		}
		order = append(order, n)
		return nil
	}
	if err := walk(output); err != nil {
		return nil, err
	}
	if !visited[input] {
		return nil, fmt.Errorf("model %s: %w: %s does not depend on %s", name, ErrDisconnected, output, input)
	}

	m := &Model[B]{name: name, input: input, output: output, nodes: order}
	seen := make(map[Layer[B]]bool, len(order))
	for _, n := range order {
		if !seen[n.layer] {
			seen[n.layer] = true
			m.layers = append(m.layers, n.layer)
		}
	}
	return m, nil
}

// Name returns the model name.
func (m *Model[B]) Name() string { return m.name }

// Kind returns "Model".
func (m *Model[B]) Kind() string { return "Model" }

// Input returns the source node.
func (m *Model[B]) Input() *Node[B] { return m.input }

// Output returns the output node.
func (m *Model[B]) Output() *Node[B] { return m.output }

// InputShape returns the per-sample input shape.
func (m *Model[B]) InputShape() tensor.Shape { return m.input.shape.Clone() }

// OutputShape returns the per-sample output shape.
func (m *Model[B]) OutputShape() tensor.Shape { return m.output.shape.Clone() }

// Layers returns the model's layers: the input layer first, then every
// other layer once, in the order it is first evaluated.
func (m *Model[B]) Layers() []Layer[B] {
	return append([]Layer[B](nil), m.layers...)
}

// ComputeOutputShape accepts exactly the model's input shape.
func (m *Model[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("%s: %w: expected 1 input, got %d", m.name, ErrShapeMismatch, len(inputs))
	}
	if !inputs[0].Equal(m.input.shape) {
		return nil, fmt.Errorf("%s: %w: expected input %v, got %v", m.name, ErrShapeMismatch, m.input.shape, inputs[0])
	}
	return m.OutputShape(), nil
}

// Forward evaluates the graph on a batch. It panics on a shape mismatch;
// use Predict for checked evaluation.
func (m *Model[B]) Forward(inputs ...*nn.Float32[B]) *nn.Float32[B] {
	if len(inputs) != 1 {
		panic(fmt.Sprintf("%s: expected 1 input, got %d", m.name, len(inputs)))
	}
	values := make(map[*Node[B]]*nn.Float32[B], len(m.nodes))
	args := make([]*nn.Float32[B], 0, 2)
	for _, n := range m.nodes {
		if n == m.input {
			values[n] = inputs[0]
			continue
		}
		args = args[:0]
		for _, in := range n.inputs {
			args = append(args, values[in])
		}
		values[n] = n.layer.Forward(args...)
	}
	return values[m.output]
}

// Predict checks x against the input shape and evaluates the graph.
func (m *Model[B]) Predict(x *nn.Float32[B]) (*nn.Float32[B], error) {
	s := x.Shape()
	if len(s) != len(m.input.shape)+1 || !s[1:].Equal(m.input.shape) {
		return nil, fmt.Errorf("predict %s: %w: expected (N, %v), got %v", m.name, ErrShapeMismatch, m.input.shape, s)
	}
	return m.Forward(x), nil
}

// Parameters returns every parameter once, in layer order.
func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	return m.collect(func(Layer[B]) bool { return true })
}

// TrainableParameters is Parameters without those of frozen layers,
// including frozen layers inside nested models.
func (m *Model[B]) TrainableParameters() []*nn.Parameter[B] {
	return m.collect(trainable[B])
}

func trainable[B tensor.Backend](l Layer[B]) bool {
	t, ok := l.(interface{ Trainable() bool })
	return !ok || t.Trainable()
}

func (m *Model[B]) collect(keep func(Layer[B]) bool) []*nn.Parameter[B] {
	var out []*nn.Parameter[B]
	seen := make(map[*nn.Parameter[B]]bool)
	for _, l := range m.layers {
		if !keep(l) {
			continue
		}
		var params []*nn.Parameter[B]
		if sub, ok := l.(*Model[B]); ok {
			params = sub.collect(keep)
		} else {
			params = l.Parameters()
		}
		for _, p := range params {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// CountParams returns the number of scalars over all unique parameters.
func (m *Model[B]) CountParams() int {
	return countParams(m.Parameters())
}

// CountTrainableParams returns the number of trainable scalars.
func (m *Model[B]) CountTrainableParams() int {
	return countParams(m.TrainableParameters())
}

func countParams[B tensor.Backend](params []*nn.Parameter[B]) int {
	n := 0
	for _, p := range params {
		n += p.NumElements()
	}
	return n
}

func (m *Model[B]) String() string {
	return fmt.Sprintf("Model(%s: %v -> %v, %d layers)", m.name, m.input.shape, m.output.shape, len(m.layers))
}
