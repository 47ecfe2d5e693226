package ops

import (
	"github.com/born-ml/progan/internal/tensor"
)

// SumOp records the sum of every element.
type SumOp struct{ base }

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{base{[]*tensor.RawTensor{x}, output}}
}

// Backward broadcasts the scalar gradient to the input's shape.
func (op *SumOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Expand(g, op.inputs[0].Shape())}
}

// SumDimOp records a sum along one dimension.
type SumDimOp struct {
	base
	dim int
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(x, output *tensor.RawTensor, dim int) *SumDimOp {
	return &SumDimOp{base{[]*tensor.RawTensor{x}, output}, x.Shape().NormalizeDim(dim)}
}

// Backward broadcasts g back over the summed dimension.
func (op *SumDimOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{expandTo(g, op.dim, op.inputs[0].Shape(), backend)}
}

// MeanDimOp records a mean along one dimension.
type MeanDimOp struct {
	base
	dim int
}

// NewMeanDimOp creates a new MeanDimOp.
func NewMeanDimOp(x, output *tensor.RawTensor, dim int) *MeanDimOp {
	return &MeanDimOp{base{[]*tensor.RawTensor{x}, output}, x.Shape().NormalizeDim(dim)}
}

// Backward broadcasts g/size back over the averaged dimension.
func (op *MeanDimOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	in := op.inputs[0].Shape()
	scaled := backend.MulScalar(g, 1/float64(in[op.dim]))
	return []*tensor.RawTensor{expandTo(scaled, op.dim, in, backend)}
}
