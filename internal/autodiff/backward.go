package autodiff

import (
	"fmt"

	"github.com/born-ml/progan/internal/tensor"
)

// BackwardCapable is a backend that owns a gradient tape.
// AutodiffBackend implements it.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of t (seeded with ones) with respect to every
// tensor recorded on backend's tape.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x := tensor.Ones[float32](tensor.Shape{2}, backend)
//	y := x.Mul(x)
//	grads := autodiff.Backward(y, backend)
//	dx := grads[x.Raw()]
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return BackwardRaw(t.Raw(), backend)
}

// BackwardRaw is Backward for callers that only hold the raw output.
func BackwardRaw(output *tensor.RawTensor, backend BackwardCapable) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	seed, err := tensor.NewRaw(output.Shape(), output.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}
	switch output.DType() {
	case tensor.Float32:
		for i := range seed.AsFloat32() {
			seed.AsFloat32()[i] = 1
		}
	case tensor.Float64:
		for i := range seed.AsFloat64() {
			seed.AsFloat64()[i] = 1
		}
	default:
		panic(fmt.Sprintf("backward: unsupported dtype %s", output.DType()))
	}
	return tape.Backward(output, seed, backend)
}
