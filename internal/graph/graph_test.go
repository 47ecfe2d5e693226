package graph_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/progan/internal/autodiff"
	"github.com/born-ml/progan/internal/backend/cpu"
	"github.com/born-ml/progan/internal/graph"
	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/optim"
	"github.com/born-ml/progan/internal/tensor"
)

type (
	cpuB  = *cpu.CPUBackend
	gradB = *autodiff.AutodiffBackend[*cpu.CPUBackend]
)

func weights() nn.WeightConfig {
	return nn.NewWeightConfig(0.5, 0, 7)
}

func mustApply[B tensor.Backend](t *testing.T, l graph.Layer[B], in ...*graph.Node[B]) *graph.Node[B] {
	t.Helper()
	n, err := graph.Apply(l, in...)
	require.NoError(t, err)
	return n
}

func TestApplyShapeMismatch(t *testing.T) {
	in := graph.Input[cpuB]("x", 4)
	dense := nn.NewDense("d", 3, 2, weights(), cpu.New())

	_, err := graph.Apply[cpuB](dense, in)
	require.ErrorIs(t, err, graph.ErrShapeMismatch)
	assert.Contains(t, err.Error(), "apply d")

	_, err = graph.Apply[cpuB](dense)
	require.ErrorIs(t, err, graph.ErrShapeMismatch)
}

func TestNewModelDisconnected(t *testing.T) {
	backend := cpu.New()
	a := graph.Input[cpuB]("a", 2)
	b := graph.Input[cpuB]("b", 2)
	ha := mustApply[cpuB](t, nn.NewDense("da", 2, 2, weights(), backend), a)
	hb := mustApply[cpuB](t, nn.NewDense("db", 2, 2, weights(), backend), b)
	sum := mustApply[cpuB](t, nn.NewWeightedSum[cpuB]("ws", nn.NewAlpha(0.5)), ha, hb)

	_, err := graph.NewModel("foreign", a, sum)
	require.ErrorIs(t, err, graph.ErrDisconnected)

	_, err = graph.NewModel("unrelated", a, hb)
	require.ErrorIs(t, err, graph.ErrDisconnected)

	_, err = graph.NewModel("not input", ha, ha)
	require.ErrorIs(t, err, graph.ErrDisconnected)
}

func TestLayersOrderAndSharing(t *testing.T) {
	backend := cpu.New()
	in := graph.Input[cpuB]("x", 3)
	shared := nn.NewDense("shared", 3, 3, weights(), backend)
	act := nn.NewLeakyReLU[cpuB]("act", 0.2)

	h := mustApply[cpuB](t, shared, in)
	h = mustApply[cpuB](t, act, h)
	h = mustApply[cpuB](t, shared, h)

	m, err := graph.NewModel("m", in, h)
	require.NoError(t, err)

	var names []string
	for _, l := range m.Layers() {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{"x", "shared", "act"}, names)
	assert.Len(t, m.Parameters(), 2)
	assert.Equal(t, 3*3+3, m.CountParams())

	rows := m.Summary()
	require.Len(t, rows, 3)
	assert.Equal(t, "InputLayer", rows[0].Kind)
	assert.True(t, rows[1].Multiple)
	assert.False(t, rows[2].Multiple)
	assert.Equal(t, 12, rows[1].Params)
	if diff := cmp.Diff(tensor.Shape{3}, rows[1].OutputShape); diff != "" {
		t.Errorf("summary shape (-want +got):\n%s", diff)
	}
}

func TestModelsShareWeightsByReference(t *testing.T) {
	backend := cpu.New()
	dense := nn.NewDense("d", 2, 1, weights(), backend)

	in1 := graph.Input[cpuB]("a", 2)
	m1, err := graph.NewModel("m1", in1, mustApply[cpuB](t, dense, in1))
	require.NoError(t, err)

	in2 := graph.Input[cpuB]("b", 2)
	h := mustApply[cpuB](t, nn.NewLeakyReLU[cpuB]("act", 1), in2)
	m2, err := graph.NewModel("m2", in2, mustApply[cpuB](t, dense, h))
	require.NoError(t, err)

	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)

	copy(dense.Kernel().Tensor().Data(), []float32{3, 4})
	y1, err := m1.Predict(x)
	require.NoError(t, err)
	y2, err := m2.Predict(x)
	require.NoError(t, err)
	assert.InDelta(t, 11, y1.Item(), 1e-6)
	assert.InDelta(t, 11, y2.Item(), 1e-6)

	copy(dense.Kernel().Tensor().Data(), []float32{-1, 0})
	y1, _ = m1.Predict(x)
	y2, _ = m2.Predict(x)
	assert.InDelta(t, -1, y1.Item(), 1e-6)
	assert.InDelta(t, -1, y2.Item(), 1e-6)
}

func TestPredictChecksShape(t *testing.T) {
	backend := cpu.New()
	in := graph.Input[cpuB]("x", 2)
	m, err := graph.NewModel("m", in, mustApply[cpuB](t, nn.NewDense("d", 2, 1, weights(), backend), in))
	require.NoError(t, err)

	x := tensor.Zeros[float32](tensor.Shape{4, 3}, backend)
	_, err = m.Predict(x)
	require.ErrorIs(t, err, graph.ErrShapeMismatch)

	x = tensor.Zeros[float32](tensor.Shape{2}, backend)
	_, err = m.Predict(x)
	require.ErrorIs(t, err, graph.ErrShapeMismatch)
}

func TestNestedModelAndFrozen(t *testing.T) {
	backend := cpu.New()

	gin := graph.Input[cpuB]("z", 2)
	gen, err := graph.NewModel("gen", gin, mustApply[cpuB](t, nn.NewDense("g", 2, 3, weights(), backend), gin))
	require.NoError(t, err)

	din := graph.Input[cpuB]("img", 3)
	disc, err := graph.NewModel("disc", din, mustApply[cpuB](t, nn.NewDense("c", 3, 1, weights(), backend), din))
	require.NoError(t, err)

	cin := graph.Input[cpuB]("z", 2)
	h := mustApply[cpuB](t, gen, cin)
	out := mustApply[cpuB](t, graph.Frozen[cpuB](disc), h)
	composite, err := graph.NewModel("composite", cin, out)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{1}, composite.OutputShape())
	assert.Len(t, composite.Parameters(), 4)
	require.Len(t, composite.TrainableParameters(), 2)
	assert.Equal(t, "g.kernel", composite.TrainableParameters()[0].Name())
	assert.Equal(t, 2*3+3, composite.CountTrainableParams())
	assert.Len(t, disc.TrainableParameters(), 2, "freezing a wrapper leaves the model trainable")

	rows := composite.Summary()
	require.Len(t, rows, 3)
	assert.Equal(t, "Model", rows[1].Kind)
	assert.Equal(t, "Model", rows[2].Kind)

	_, err = graph.Apply[cpuB](disc, cin)
	require.ErrorIs(t, err, graph.ErrShapeMismatch)
}

func TestTrainOnBatchErrors(t *testing.T) {
	backend := cpu.New()
	in := graph.Input[cpuB]("x", 2)
	dense := nn.NewDense("d", 2, 1, weights(), backend)
	m, err := graph.NewModel("m", in, mustApply[cpuB](t, dense, in))
	require.NoError(t, err)

	x := tensor.Ones[float32](tensor.Shape{2, 2}, backend)
	y := tensor.Ones[float32](tensor.Shape{2, 1}, backend)

	_, err = m.TrainOnBatch(x, y)
	require.ErrorIs(t, err, graph.ErrNotCompiled)

	m.Compile(nn.NewWassersteinLoss[cpuB](), optim.NewAdam(m.TrainableParameters(), optim.DefaultAdamConfig()))
	assert.True(t, m.Compiled())
	_, err = m.TrainOnBatch(x, y)
	require.ErrorIs(t, err, graph.ErrNoGradients)
}

func TestTrainOnBatch(t *testing.T) {
	backend := autodiff.New(cpu.New())

	in := graph.Input[gradB]("x", 2)
	dense := nn.NewDense("d", 2, 1, weights(), backend)
	frozen := nn.NewDense("f", 1, 1, weights(), backend)
	h := mustApply[gradB](t, dense, in)
	out := mustApply[gradB](t, graph.Frozen[gradB](frozen), h)
	m, err := graph.NewModel("m", in, out)
	require.NoError(t, err)
	copy(frozen.Kernel().Tensor().Data(), []float32{1})

	m.Compile(nn.NewWassersteinLoss[gradB](), optim.NewAdam(m.TrainableParameters(), optim.DefaultAdamConfig()))

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	y := tensor.Ones[float32](tensor.Shape{2, 1}, backend)

	before := append([]float32(nil), dense.Kernel().Tensor().Data()...)
	first, err := m.TrainOnBatch(x, y)
	require.NoError(t, err)
	second, err := m.TrainOnBatch(x, y)
	require.NoError(t, err)

	assert.Less(t, second, first)
	assert.NotEqual(t, before, dense.Kernel().Tensor().Data())
	assert.Equal(t, []float32{1}, frozen.Kernel().Tensor().Data())
	assert.False(t, backend.Tape().IsRecording())
	assert.Zero(t, backend.Tape().NumOps())

	_, err = m.TrainOnBatch(x, tensor.Ones[float32](tensor.Shape{2, 2}, backend))
	require.ErrorIs(t, err, graph.ErrShapeMismatch)
}
