package ops

import (
	"github.com/born-ml/progan/internal/tensor"
)

// MatMulOp records A @ B for 2-D operands.
//
// Backward:
//   - dA = g @ Bᵀ
//   - dB = Aᵀ @ g
type MatMulOp struct{ base }

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{base{[]*tensor.RawTensor{a, b}, output}}
}

// Backward computes [g @ Bᵀ, Aᵀ @ g].
func (op *MatMulOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		backend.MatMul(g, backend.Transpose(b)),
		backend.MatMul(backend.Transpose(a), g),
	}
}

// TransposeOp records an axis permutation.
type TransposeOp struct {
	base
	axes []int
}

// NewTransposeOp creates a new TransposeOp. Empty axes means "reverse".
func NewTransposeOp(x, output *tensor.RawTensor, axes []int) *TransposeOp {
	if len(axes) == 0 {
		n := len(x.Shape())
		axes = make([]int, n)
		for i := range axes {
			axes[i] = n - 1 - i
		}
	}
	return &TransposeOp{base{[]*tensor.RawTensor{x}, output}, append([]int(nil), axes...)}
}

// Backward applies the inverse permutation to g.
func (op *TransposeOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverse[ax] = i
	}
	return []*tensor.RawTensor{backend.Transpose(g, inverse...)}
}

// ReshapeOp records a reshape.
type ReshapeOp struct{ base }

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(x, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{base{[]*tensor.RawTensor{x}, output}}
}

// Backward reshapes g back to the input's shape.
func (op *ReshapeOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(g, op.inputs[0].Shape())}
}

// ExpandOp records a broadcast to a larger shape.
type ExpandOp struct{ base }

// NewExpandOp creates a new ExpandOp.
func NewExpandOp(x, output *tensor.RawTensor) *ExpandOp {
	return &ExpandOp{base{[]*tensor.RawTensor{x}, output}}
}

// Backward sums g over the broadcast dimensions.
func (op *ExpandOp) Backward(g *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{reduceBroadcast(g, op.inputs[0].Shape(), backend)}
}

// CatOp records a concatenation along dim.
type CatOp struct {
	base
	dim int
}

// NewCatOp creates a new CatOp.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	return &CatOp{base{append([]*tensor.RawTensor(nil), inputs...), output}, output.Shape().NormalizeDim(dim)}
}

// Backward slices g into one piece per input along dim.
func (op *CatOp) Backward(g *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := g.Shape()
	elem := g.DType().Size()
	outer := 1
	for _, d := range shape[:op.dim] {
		outer *= d
	}
	inner := 1
	for _, d := range shape[op.dim+1:] {
		inner *= d
	}
	rowBytes := shape[op.dim] * inner * elem

	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	src := g.Data()
	for i, in := range op.inputs {
		gi := tensor.MustNewRaw(in.Shape(), g.DType(), g.Device())
		chunk := in.Shape()[op.dim] * inner * elem
		dst := gi.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*chunk:(o+1)*chunk], src[o*rowBytes+offset:o*rowBytes+offset+chunk])
		}
		offset += chunk
		grads[i] = gi
	}
	return grads
}
