package nn

import (
	"github.com/born-ml/progan/internal/tensor"
)

// Parameter is a trainable tensor owned by a layer.
//
// A Parameter may carry a Constraint; optimizers apply it after every
// update.
type Parameter[B tensor.Backend] struct {
	name       string
	tensor     *Float32[B]
	grad       *Float32[B]
	constraint Constraint
}

// NewParameter wraps an initialized tensor.
func NewParameter[B tensor.Backend](name string, t *Float32[B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// NewConstrainedParameter wraps t and attaches c. A nil c means
// unconstrained.
func NewConstrainedParameter[B tensor.Backend](name string, t *Float32[B], c Constraint) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t, constraint: c}
}

// Name returns the parameter name, e.g. "d8_conv1.kernel".
func (p *Parameter[B]) Name() string { return p.name }

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *Float32[B] { return p.tensor }

// Grad returns the last gradient, or nil before any backward pass.
func (p *Parameter[B]) Grad() *Float32[B] { return p.grad }

// SetGrad stores a gradient.
func (p *Parameter[B]) SetGrad(grad *Float32[B]) { p.grad = grad }

// ZeroGrad drops the stored gradient.
func (p *Parameter[B]) ZeroGrad() { p.grad = nil }

// Constraint returns the attached constraint, or nil.
func (p *Parameter[B]) Constraint() Constraint { return p.constraint }

// ApplyConstraint projects the parameter's values in place.
func (p *Parameter[B]) ApplyConstraint() {
	if p.constraint != nil {
		p.constraint.Apply(p.tensor.Data(), p.tensor.Shape())
	}
}

// NumElements returns the number of scalars in the parameter.
func (p *Parameter[B]) NumElements() int { return p.tensor.NumElements() }
