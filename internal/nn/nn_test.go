package nn_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/progan/internal/backend/cpu"
	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/tensor"
)

type cpuTensor = tensor.Tensor[float32, *cpu.CPUBackend]

var approx = cmpopts.EquateApprox(1e-5, 1e-6)

func fromSlice(t *testing.T, data []float32, shape ...int) *cpuTensor {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape(shape), cpu.New())
	require.NoError(t, err)
	return x
}

func testWeights() nn.WeightConfig {
	return nn.NewWeightConfig(0.02, 1.0, 1)
}

func TestOutputShapes(t *testing.T) {
	backend := cpu.New()
	alpha := nn.NewAlpha(0)

	tests := []struct {
		name    string
		layer   interface {
			ComputeOutputShape(...tensor.Shape) (tensor.Shape, error)
		}
		inputs  []tensor.Shape
		want    tensor.Shape
		wantErr bool
	}{
		{"conv keeps spatial", nn.NewConv2D("c", 3, 8, 3, testWeights(), backend),
			[]tensor.Shape{{3, 4, 4}}, tensor.Shape{8, 4, 4}, false},
		{"conv 4x4 keeps spatial", nn.NewConv2D("c", 3, 8, 4, testWeights(), backend),
			[]tensor.Shape{{3, 4, 4}}, tensor.Shape{8, 4, 4}, false},
		{"conv wrong channels", nn.NewConv2D("c", 3, 8, 3, testWeights(), backend),
			[]tensor.Shape{{4, 4, 4}}, nil, true},
		{"conv flat input", nn.NewConv2D("c", 3, 8, 3, testWeights(), backend),
			[]tensor.Shape{{48}}, nil, true},
		{"dense", nn.NewDense("d", 48, 1, testWeights(), backend),
			[]tensor.Shape{{48}}, tensor.Shape{1}, false},
		{"dense wrong width", nn.NewDense("d", 48, 1, testWeights(), backend),
			[]tensor.Shape{{47}}, nil, true},
		{"leaky relu", nn.NewLeakyReLU[*cpu.CPUBackend]("a", 0.2),
			[]tensor.Shape{{2, 3}}, tensor.Shape{2, 3}, false},
		{"pixel norm", nn.NewPixelNorm[*cpu.CPUBackend]("p"),
			[]tensor.Shape{{16, 8, 8}}, tensor.Shape{16, 8, 8}, false},
		{"minibatch stdev", nn.NewMiniBatchStdev[*cpu.CPUBackend]("m"),
			[]tensor.Shape{{16, 4, 4}}, tensor.Shape{17, 4, 4}, false},
		{"upsample", nn.NewUpSampling2D[*cpu.CPUBackend]("u"),
			[]tensor.Shape{{16, 4, 4}}, tensor.Shape{16, 8, 8}, false},
		{"avgpool", nn.NewAveragePooling2D[*cpu.CPUBackend]("p"),
			[]tensor.Shape{{16, 8, 8}}, tensor.Shape{16, 4, 4}, false},
		{"avgpool too small", nn.NewAveragePooling2D[*cpu.CPUBackend]("p"),
			[]tensor.Shape{{16, 1, 1}}, nil, true},
		{"flatten", nn.NewFlatten[*cpu.CPUBackend]("f"),
			[]tensor.Shape{{16, 4, 4}}, tensor.Shape{256}, false},
		{"reshape", nn.NewReshape[*cpu.CPUBackend]("r", 16, 4, 4),
			[]tensor.Shape{{256}}, tensor.Shape{16, 4, 4}, false},
		{"reshape size mismatch", nn.NewReshape[*cpu.CPUBackend]("r", 16, 4, 4),
			[]tensor.Shape{{255}}, nil, true},
		{"weighted sum", nn.NewWeightedSum[*cpu.CPUBackend]("w", alpha),
			[]tensor.Shape{{3, 8, 8}, {3, 8, 8}}, tensor.Shape{3, 8, 8}, false},
		{"weighted sum mismatch", nn.NewWeightedSum[*cpu.CPUBackend]("w", alpha),
			[]tensor.Shape{{3, 8, 8}, {3, 4, 4}}, nil, true},
		{"weighted sum arity", nn.NewWeightedSum[*cpu.CPUBackend]("w", alpha),
			[]tensor.Shape{{3, 8, 8}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.layer.ComputeOutputShape(tt.inputs...)
			if tt.wantErr {
				require.ErrorIs(t, err, nn.ErrShapeMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConv2D_Forward(t *testing.T) {
	backend := cpu.New()
	conv := nn.NewConv2D("c", 2, 3, 3, testWeights(), backend)
	assert.Equal(t, tensor.Shape{3, 2, 3, 3}, conv.Kernel().Tensor().Shape())
	require.Len(t, conv.Parameters(), 2)
	assert.Equal(t, "c.kernel", conv.Parameters()[0].Name())
	assert.Equal(t, "c.bias", conv.Parameters()[1].Name())
	assert.Equal(t, nn.MaxNorm{Max: 1}, conv.Kernel().Constraint())
	assert.Nil(t, conv.Parameters()[1].Constraint())

	x := tensor.Ones[float32](tensor.Shape{2, 2, 5, 5}, backend)
	out := conv.Forward(x)
	assert.Equal(t, tensor.Shape{2, 3, 5, 5}, out.Shape())
}

func TestDense_Forward(t *testing.T) {
	backend := cpu.New()
	d := nn.NewDense("d", 3, 2, nn.WeightConfig{Init: nn.Zeros{}}, backend)
	copy(d.Kernel().Tensor().Data(), []float32{1, 0, 0, 0, 1, 2})
	copy(d.Parameters()[1].Tensor().Data(), []float32{0.5, -1})

	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	out := d.Forward(x)
	require.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{1.5, 7, 4.5, 16}, out.Data())
}

func TestPixelNorm_Forward(t *testing.T) {
	pn := nn.NewPixelNorm[*cpu.CPUBackend]("pn")
	// One pixel, two channels: (3, 4). mean(x²) = 12.5.
	x := fromSlice(t, []float32{3, 4}, 1, 2, 1, 1)
	out := pn.Forward(x)

	d := float32(math.Sqrt(12.5 + 1e-8))
	if diff := cmp.Diff([]float32{3 / d, 4 / d}, out.Data(), approx); diff != "" {
		t.Errorf("pixel norm mismatch (-want +got):\n%s", diff)
	}
}

func TestMiniBatchStdev_Forward(t *testing.T) {
	m := nn.NewMiniBatchStdev[*cpu.CPUBackend]("mbs")
	// Two samples, one channel, 1×2 map.
	// Position 0: {1, 3} → std 1. Position 1: {2, 2} → std 0 (+ε).
	x := fromSlice(t, []float32{1, 2, 3, 2}, 2, 1, 1, 2)
	out := m.Forward(x)

	require.Equal(t, tensor.Shape{2, 2, 1, 2}, out.Shape())
	s := float32((math.Sqrt(1+1e-8) + math.Sqrt(1e-8)) / 2)
	want := []float32{1, 2, s, s, 3, 2, s, s}
	if diff := cmp.Diff(want, out.Data(), approx); diff != "" {
		t.Errorf("minibatch stdev mismatch (-want +got):\n%s", diff)
	}
}

func TestWeightedSum_ReadsAlphaAtForward(t *testing.T) {
	alpha := nn.NewAlpha(0)
	ws := nn.NewWeightedSum[*cpu.CPUBackend]("ws", alpha)
	old := fromSlice(t, []float32{2, 4}, 1, 2)
	cur := fromSlice(t, []float32{10, 20}, 1, 2)

	tests := []struct {
		alpha float64
		want  []float32
	}{
		{0, []float32{2, 4}},
		{1, []float32{10, 20}},
		{0.25, []float32{4, 8}},
	}
	for _, tt := range tests {
		alpha.Set(tt.alpha)
		assert.Equal(t, tt.alpha, ws.Alpha().Value())
		if diff := cmp.Diff(tt.want, ws.Forward(old, cur).Data(), approx); diff != "" {
			t.Errorf("alpha=%g (-want +got):\n%s", tt.alpha, diff)
		}
	}
	assert.Panics(t, func() { nn.NewWeightedSum[*cpu.CPUBackend]("ws", nil) })
}

func TestResampleAndReshapeLayers(t *testing.T) {
	x := fromSlice(t, []float32{1, 2, 3, 4}, 1, 1, 2, 2)

	up := nn.NewUpSampling2D[*cpu.CPUBackend]("up").Forward(x)
	assert.Equal(t, tensor.Shape{1, 1, 4, 4}, up.Shape())

	down := nn.NewAveragePooling2D[*cpu.CPUBackend]("down").Forward(up)
	assert.Equal(t, x.Data(), down.Data())

	flat := nn.NewFlatten[*cpu.CPUBackend]("flat").Forward(x)
	assert.Equal(t, tensor.Shape{1, 4}, flat.Shape())

	back := nn.NewReshape[*cpu.CPUBackend]("rs", 1, 2, 2).Forward(flat)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, back.Shape())

	act := nn.NewLeakyReLU[*cpu.CPUBackend]("act", 0.2).Forward(fromSlice(t, []float32{-1, 1}, 1, 2))
	if diff := cmp.Diff([]float32{-0.2, 1}, act.Data(), approx); diff != "" {
		t.Errorf("leaky relu (-want +got):\n%s", diff)
	}
}

func TestWassersteinLoss(t *testing.T) {
	loss := nn.NewWassersteinLoss[*cpu.CPUBackend]()
	yTrue := fromSlice(t, []float32{-1, -1, 1, 1}, 4, 1)
	yPred := fromSlice(t, []float32{0.5, 1.5, 2, -1}, 4, 1)

	got := loss.Compute(yTrue, yPred)
	assert.Equal(t, "wasserstein", loss.Name())
	assert.InDelta(t, (-0.5-1.5+2-1)/4.0, got.Item(), 1e-6)
	assert.Panics(t, func() { loss.Compute(yTrue, fromSlice(t, []float32{1, 2}, 2, 1)) })
}
