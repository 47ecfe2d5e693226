package graph

import (
	"fmt"

	"github.com/born-ml/progan/internal/autodiff"
	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/tensor"
)

// Optimizer updates parameters from a gradient map keyed by the
// parameters' raw tensors. optim.Adam implements it.
type Optimizer interface {
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)
	ZeroGrad()
}

// Compile attaches a loss and an optimizer. The optimizer should own the
// model's TrainableParameters.
func (m *Model[B]) Compile(loss nn.Loss[B], opt Optimizer) {
	m.loss = loss
	m.opt = opt
}

// Compiled reports whether Compile has been called.
func (m *Model[B]) Compiled() bool { return m.loss != nil && m.opt != nil }

// Loss returns the compiled loss, or nil.
func (m *Model[B]) Loss() nn.Loss[B] { return m.loss }

// Optimizer returns the compiled optimizer, or nil.
func (m *Model[B]) Optimizer() Optimizer { return m.opt }

// TrainOnBatch runs one optimization step on (x, y) and returns the loss
// before the update.
//
// x and y must live on a backend that records a gradient tape, e.g.
// autodiff.New(cpu.New()). The tape is cleared before and after the step.
func (m *Model[B]) TrainOnBatch(x, y *nn.Float32[B]) (float32, error) {
	if !m.Compiled() {
		return 0, fmt.Errorf("train %s: %w", m.name, ErrNotCompiled)
	}
	bc, ok := any(x.Backend()).(autodiff.BackwardCapable)
	if !ok {
		return 0, fmt.Errorf("train %s: %w: %s", m.name, ErrNoGradients, x.Backend().Name())
	}

	tape := bc.GetTape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	pred, err := m.Predict(x)
	if err != nil {
		return 0, fmt.Errorf("train %s: %w", m.name, err)
	}
	if !pred.Shape().Equal(y.Shape()) {
		return 0, fmt.Errorf("train %s: %w: targets %v, predictions %v", m.name, ErrShapeMismatch, y.Shape(), pred.Shape())
	}
	loss := m.loss.Compute(y, pred)
	tape.StopRecording()

	grads := autodiff.BackwardRaw(loss.Raw(), bc)
	m.opt.ZeroGrad()
	m.opt.Step(grads)
	return loss.Item(), nil
}
