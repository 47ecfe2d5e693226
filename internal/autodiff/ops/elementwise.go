package ops

import (
	"github.com/born-ml/progan/internal/tensor"
)

// AddOp records a + b. Both inputs receive the output gradient, summed
// over any broadcast dimensions.
type AddOp struct{ base }

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.RawTensor) *AddOp {
	return &AddOp{base{[]*tensor.RawTensor{a, b}, output}}
}

// Backward computes [dL/da, dL/db].
func (op *AddOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(g, op.inputs[0].Shape(), backend),
		reduceBroadcast(g, op.inputs[1].Shape(), backend),
	}
}

// SubOp records a - b.
type SubOp struct{ base }

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, output *tensor.RawTensor) *SubOp {
	return &SubOp{base{[]*tensor.RawTensor{a, b}, output}}
}

// Backward computes [g, -g].
func (op *SubOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(g, op.inputs[0].Shape(), backend),
		reduceBroadcast(backend.MulScalar(g, -1), op.inputs[1].Shape(), backend),
	}
}

// MulOp records a * b.
type MulOp struct{ base }

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{base{[]*tensor.RawTensor{a, b}, output}}
}

// Backward computes [g*b, g*a].
func (op *MulOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(backend.Mul(g, b), a.Shape(), backend),
		reduceBroadcast(backend.Mul(g, a), b.Shape(), backend),
	}
}

// DivOp records a / b.
type DivOp struct{ base }

// NewDivOp creates a new DivOp.
func NewDivOp(a, b, output *tensor.RawTensor) *DivOp {
	return &DivOp{base{[]*tensor.RawTensor{a, b}, output}}
}

// Backward computes [g/b, -g*(a/b)/b].
func (op *DivOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	da := backend.Div(g, b)
	db := backend.MulScalar(backend.Div(backend.Mul(g, op.output), b), -1)
	return []*tensor.RawTensor{
		reduceBroadcast(da, a.Shape(), backend),
		reduceBroadcast(db, b.Shape(), backend),
	}
}

// MulScalarOp records x * s.
type MulScalarOp struct {
	base
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(x, output *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{base{[]*tensor.RawTensor{x}, output}, scalar}
}

// Backward computes g*s.
func (op *MulScalarOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(g, op.scalar)}
}

// AddScalarOp records x + s. The gradient passes through unchanged.
type AddScalarOp struct{ base }

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(x, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{base{[]*tensor.RawTensor{x}, output}}
}

// Backward returns g.
func (op *AddScalarOp) Backward(g *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{g}
}

// SqrtOp records sqrt(x).
type SqrtOp struct{ base }

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(x, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{base{[]*tensor.RawTensor{x}, output}}
}

// Backward computes g / (2*sqrt(x)).
func (op *SqrtOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(backend.MulScalar(g, 0.5), op.output)}
}

// LeakyReLUOp records max(x, alpha*x).
type LeakyReLUOp struct {
	base
	alpha float64
}

// NewLeakyReLUOp creates a new LeakyReLUOp.
func NewLeakyReLUOp(x, output *tensor.RawTensor, alpha float64) *LeakyReLUOp {
	return &LeakyReLUOp{base{[]*tensor.RawTensor{x}, output}, alpha}
}

// Backward scales g by 1 where x > 0 and alpha elsewhere.
func (op *LeakyReLUOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.LeakyReLUBackward(op.inputs[0], g, op.alpha)}
}
