package nn

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/born-ml/progan/internal/tensor"
)

// Alpha is the blend coefficient of a fade-in. It is owned by the training
// schedule: layers only read it, and the same handle may be read by the
// generator, discriminator and composite fade-in models of one stage.
type Alpha struct {
	bits atomic.Uint64
}

// NewAlpha creates a handle holding v.
func NewAlpha(v float64) *Alpha {
	a := &Alpha{}
	a.Set(v)
	return a
}

// Set stores v. Safe for concurrent use with Value.
func (a *Alpha) Set(v float64) { a.bits.Store(math.Float64bits(v)) }

// Value returns the current coefficient.
func (a *Alpha) Value() float64 { return math.Float64frombits(a.bits.Load()) }

// WeightedSum blends two equally shaped inputs:
//
//	y = (1 - α)·in[0] + α·in[1]
//
// in[0] is the old (faded out) path and in[1] the new one.
type WeightedSum[B tensor.Backend] struct {
	name  string
	alpha *Alpha
}

// NewWeightedSum creates a blend reading alpha at every forward pass.
func NewWeightedSum[B tensor.Backend](name string, alpha *Alpha) *WeightedSum[B] {
	if alpha == nil {
		panic("weighted_sum: nil alpha")
	}
	return &WeightedSum[B]{name: name, alpha: alpha}
}

// Name returns the layer name.
func (w *WeightedSum[B]) Name() string { return w.name }

// Kind returns "WeightedSum".
func (w *WeightedSum[B]) Kind() string { return "WeightedSum" }

// Alpha returns the handle this layer reads.
func (w *WeightedSum[B]) Alpha() *Alpha { return w.alpha }

// ComputeOutputShape requires two inputs of identical shape.
func (w *WeightedSum[B]) ComputeOutputShape(inputs ...tensor.Shape) (tensor.Shape, error) {
	if len(inputs) != 2 {
		return nil, shapeErr(w.name, "expected 2 inputs, got %d", len(inputs))
	}
	if !inputs[0].Equal(inputs[1]) {
		return nil, shapeErr(w.name, "inputs differ: %v vs %v", inputs[0], inputs[1])
	}
	return inputs[0].Clone(), nil
}

// Forward blends the inputs with the current alpha.
func (w *WeightedSum[B]) Forward(inputs ...*Float32[B]) *Float32[B] {
	if len(inputs) != 2 {
		panic(fmt.Sprintf("%s: expected 2 inputs, got %d", w.name, len(inputs)))
	}
	a := float32(w.alpha.Value())
	return inputs[0].MulScalar(1 - a).Add(inputs[1].MulScalar(a))
}

// Parameters returns nil.
func (w *WeightedSum[B]) Parameters() []*Parameter[B] { return nil }

func (w *WeightedSum[B]) String() string {
	return fmt.Sprintf("WeightedSum(%s, alpha=%g)", w.name, w.alpha.Value())
}
