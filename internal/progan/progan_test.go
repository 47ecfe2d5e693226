package progan_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/born-ml/progan/internal/autodiff"
	"github.com/born-ml/progan/internal/backend/cpu"
	"github.com/born-ml/progan/internal/graph"
	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/progan"
	"github.com/born-ml/progan/internal/tensor"
)

type (
	cpuB  = *cpu.CPUBackend
	gradB = *autodiff.AutodiffBackend[*cpu.CPUBackend]
)

var approx = cmpopts.EquateApprox(1e-5, 1e-6)

func smallHyper() progan.Hyper {
	h := progan.DefaultHyper()
	h.Filters = 4
	return h
}

func newBuilder[B tensor.Backend](t *testing.T, backend B, opts ...progan.BuilderOption) *progan.Builder[B] {
	t.Helper()
	b, err := progan.NewBuilder(backend, nn.NewWeightConfig(0.02, 1, 42), smallHyper(), opts...)
	require.NoError(t, err)
	return b
}

func randn[B tensor.Backend](backend B, seed int64, shape ...int) *tensor.Tensor[float32, B] {
	return tensor.Randn[float32](tensor.Shape(shape), rand.New(rand.NewSource(seed)), backend)
}

func hasLayer[B tensor.Backend](layers []graph.Layer[B], l graph.Layer[B]) bool {
	for _, x := range layers {
		if x == l {
			return true
		}
	}
	return false
}

func paramSet[B tensor.Backend](m *graph.Model[B]) map[*nn.Parameter[B]]bool {
	set := make(map[*nn.Parameter[B]]bool)
	for _, p := range m.Parameters() {
		set[p] = true
	}
	return set
}

func TestGeneratorStages(t *testing.T) {
	b := newBuilder(t, cpu.New())
	stages, err := b.Generator(8, 3, 4)
	require.NoError(t, err)
	require.Len(t, stages, 3)

	for i, s := range stages {
		side := 4 << i
		assert.Equal(t, side, s.Resolution)
		assert.Equal(t, tensor.Shape{8}, s.Straight.InputShape())
		assert.Equal(t, tensor.Shape{3, side, side}, s.Straight.OutputShape(), "stage %d", i)
		assert.Equal(t, tensor.Shape{3, side, side}, s.FadeIn.OutputShape(), "stage %d", i)
	}

	assert.Same(t, stages[0].Straight, stages[0].FadeIn)
	assert.Nil(t, stages[0].Alpha)
	assert.Same(t, b.Alpha(8), stages[1].Alpha)
	assert.Same(t, b.Alpha(16), stages[2].Alpha)
}

func TestGeneratorSharesWeights(t *testing.T) {
	b := newBuilder(t, cpu.New())
	stages, err := b.Generator(8, 2, 4)
	require.NoError(t, err)

	base, straight, fade := stages[0].Straight, paramSet(stages[1].Straight), paramSet(stages[1].FadeIn)
	for _, p := range base.Parameters() {
		assert.True(t, fade[p], "fade-in model should reuse %s", p.Name())
		if p.Name() == "g4_to_rgb.kernel" || p.Name() == "g4_to_rgb.bias" {
			assert.False(t, straight[p], "straight model should drop %s", p.Name())
			continue
		}
		assert.True(t, straight[p], "straight model should reuse %s", p.Name())
	}
	for p := range straight {
		assert.True(t, fade[p], "%s missing from fade-in model", p.Name())
	}

	// Same input node and same layer objects: the fade-in model holds one
	// more output conv and the blend.
	assert.Same(t, stages[1].Straight.Input(), stages[1].FadeIn.Input())
	assert.Len(t, stages[1].FadeIn.Layers(), len(stages[1].Straight.Layers())+2)
}

func TestGeneratorFadeInEndpoints(t *testing.T) {
	backend := cpu.New()
	b := newBuilder(t, backend)
	stages, err := b.Generator(8, 2, 4)
	require.NoError(t, err)

	z := randn(backend, 3, 2, 8)
	s := stages[1]

	s.Alpha.Set(1)
	want, err := s.Straight.Predict(z)
	require.NoError(t, err)
	got, err := s.FadeIn.Predict(z)
	require.NoError(t, err)
	if diff := cmp.Diff(want.Data(), got.Data(), approx); diff != "" {
		t.Errorf("alpha=1 should equal the straight model (-want +got):\n%s", diff)
	}

	s.Alpha.Set(0)
	prev, err := stages[0].Straight.Predict(z)
	require.NoError(t, err)
	want = nn.NewUpSampling2D[cpuB]("up").Forward(prev)
	got, err = s.FadeIn.Predict(z)
	require.NoError(t, err)
	if diff := cmp.Diff(want.Data(), got.Data(), approx); diff != "" {
		t.Errorf("alpha=0 should equal the upsampled previous stage (-want +got):\n%s", diff)
	}
}

func TestDiscriminatorStages(t *testing.T) {
	b := newBuilder(t, cpu.New())
	stages, err := b.Discriminator(3, nil)
	require.NoError(t, err)
	require.Len(t, stages, 3)

	for i, s := range stages {
		side := 4 << i
		assert.Equal(t, tensor.Shape{3, side, side}, s.Straight.InputShape(), "stage %d", i)
		assert.Equal(t, tensor.Shape{1}, s.Straight.OutputShape())
		assert.Equal(t, tensor.Shape{1}, s.FadeIn.OutputShape())
		assert.True(t, s.Straight.Compiled())
		assert.True(t, s.FadeIn.Compiled())
	}
	assert.Same(t, stages[0].Straight, stages[0].FadeIn)
	assert.Same(t, b.Alpha(8), stages[1].Alpha)

	var kinds []string
	for _, l := range stages[0].Straight.Layers() {
		kinds = append(kinds, l.(interface{ Kind() string }).Kind())
	}
	assert.Equal(t, []string{
		"InputLayer", "Conv2D", "LeakyReLU", "MiniBatchStdev", "Conv2D", "LeakyReLU",
		"Conv2D", "LeakyReLU", "Flatten", "Dense",
	}, kinds)
}

func TestDiscriminatorSharesTail(t *testing.T) {
	b := newBuilder(t, cpu.New())
	stages, err := b.Discriminator(2, nil)
	require.NoError(t, err)

	old := stages[0].Straight.Layers()
	straight := stages[1].Straight.Layers()
	require.Len(t, straight, 8+len(old)-progan.DefaultInputLayers)
	for i, l := range old[progan.DefaultInputLayers:] {
		assert.Same(t, l, straight[8+i], "tail layer %s", l.Name())
	}

	fade := stages[1].FadeIn.Layers()
	for _, l := range old[1:] {
		assert.True(t, hasLayer(fade, l), "fade-in model should reuse %s", l.Name())
	}
	for _, l := range old[1:progan.DefaultInputLayers] {
		assert.False(t, hasLayer(straight, l), "straight model should drop %s", l.Name())
	}
}

func TestDiscriminatorFadeInEndpoints(t *testing.T) {
	backend := cpu.New()
	b := newBuilder(t, backend)
	stages, err := b.Discriminator(2, nil)
	require.NoError(t, err)

	x := randn(backend, 5, 3, 3, 8, 8)
	s := stages[1]

	s.Alpha.Set(1)
	want, err := s.Straight.Predict(x)
	require.NoError(t, err)
	got, err := s.FadeIn.Predict(x)
	require.NoError(t, err)
	if diff := cmp.Diff(want.Data(), got.Data(), approx); diff != "" {
		t.Errorf("alpha=1 should equal the straight model (-want +got):\n%s", diff)
	}

	s.Alpha.Set(0)
	small := nn.NewAveragePooling2D[cpuB]("pool").Forward(x)
	want, err = stages[0].Straight.Predict(small)
	require.NoError(t, err)
	got, err = s.FadeIn.Predict(x)
	require.NoError(t, err)
	if diff := cmp.Diff(want.Data(), got.Data(), approx); diff != "" {
		t.Errorf("alpha=0 should equal the previous stage on downsampled input (-want +got):\n%s", diff)
	}
}

func TestBuilderErrors(t *testing.T) {
	b := newBuilder(t, cpu.New())
	discs, err := b.Discriminator(1, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		err  func() error
	}{
		{"zero blocks", func() error { _, err := b.Generator(8, 0, 4); return err }},
		{"zero latent", func() error { _, err := b.Generator(0, 1, 4); return err }},
		{"zero in dim", func() error { _, err := b.Generator(8, 1, 0); return err }},
		{"disc zero blocks", func() error { _, err := b.Discriminator(0, nil); return err }},
		{"disc flat input", func() error { _, err := b.Discriminator(1, tensor.Shape{48}); return err }},
		{"input layers too small", func() error {
			_, err := b.AddDiscriminatorBlock(discs[0].Straight, 1)
			return err
		}},
		{"input layers too large", func() error {
			_, err := b.AddDiscriminatorBlock(discs[0].Straight, len(discs[0].Straight.Layers()))
			return err
		}},
		{"nil generator", func() error { _, err := b.AddGeneratorBlock(nil); return err }},
		{"composite length", func() error { _, err := b.Composite(nil, discs); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.err(), progan.ErrInvalidConfig)
		})
	}

	// Counting the stddev layer as input stage leaves the blend inputs with
	// different channel counts.
	_, err = b.AddDiscriminatorBlock(discs[0].Straight, 4)
	require.ErrorIs(t, err, graph.ErrShapeMismatch)
}

func TestNewBuilderValidates(t *testing.T) {
	h := smallHyper()
	h.Filters = 0
	_, err := progan.NewBuilder(cpu.New(), nn.NewWeightConfig(0.02, 1, 1), h)
	require.ErrorIs(t, err, progan.ErrInvalidConfig)

	h = smallHyper()
	h.Adam.LR = 0
	_, err = progan.NewBuilder(cpu.New(), nn.NewWeightConfig(0.02, 1, 1), h)
	require.ErrorIs(t, err, progan.ErrInvalidConfig)

	_, err = progan.NewBuilder(cpu.New(), nn.WeightConfig{}, smallHyper())
	require.ErrorIs(t, err, progan.ErrInvalidConfig)
}

func TestCompositeTrainsGeneratorOnly(t *testing.T) {
	backend := autodiff.New(cpu.New())
	b := newBuilder(t, backend)
	gens, err := b.Generator(8, 2, 4)
	require.NoError(t, err)
	discs, err := b.Discriminator(2, nil)
	require.NoError(t, err)
	gans, err := b.Composite(gens, discs)
	require.NoError(t, err)
	require.Len(t, gans, 2)

	assert.Same(t, gans[0].Straight, gans[0].FadeIn)
	assert.Same(t, gens[1].Alpha, gans[1].Alpha)
	assert.Same(t, discs[1].Alpha, gans[1].Alpha)

	gan := gans[1].FadeIn
	assert.Equal(t, tensor.Shape{1}, gan.OutputShape())
	assert.Equal(t, gens[1].FadeIn.CountParams(), gan.CountTrainableParams())
	assert.Equal(t, gens[1].FadeIn.CountParams()+discs[1].FadeIn.CountParams(), gan.CountParams())

	genKernel := gens[1].FadeIn.Parameters()[0].Tensor()
	discKernel := discs[1].FadeIn.Parameters()[0].Tensor()
	genBefore := append([]float32(nil), genKernel.Data()...)
	discBefore := append([]float32(nil), discKernel.Data()...)

	progan.UpdateFadeIn(1, 3, gans[1].Alpha)

	z := randn(backend, 9, 2, 8)
	y := tensor.Full[float32](tensor.Shape{2, 1}, -1, backend)
	loss, err := gan.TrainOnBatch(z, y)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(float64(loss)))

	assert.NotEqual(t, genBefore, genKernel.Data())
	assert.Equal(t, discBefore, discKernel.Data())
}

func TestDiscriminatorTrainOnBatch(t *testing.T) {
	backend := autodiff.New(cpu.New())
	b := newBuilder(t, backend)
	discs, err := b.Discriminator(2, nil)
	require.NoError(t, err)
	discs[1].Alpha.Set(0.3)

	x := randn(backend, 11, 4, 3, 8, 8)
	y := tensor.Full[float32](tensor.Shape{4, 1}, 1, backend)
	for _, m := range []*graph.Model[gradB]{discs[1].Straight, discs[1].FadeIn} {
		first, err := m.TrainOnBatch(x, y)
		require.NoError(t, err, m.Name())
		second, err := m.TrainOnBatch(x, y)
		require.NoError(t, err, m.Name())
		assert.Less(t, second, first, m.Name())
	}
}

func TestUpdateFadeIn(t *testing.T) {
	tests := []struct {
		step, nSteps int
		want         float64
	}{
		{0, 11, 0},
		{5, 11, 0.5},
		{10, 11, 1},
		{20, 11, 1},
		{-3, 11, 0},
		{0, 1, 1},
		{0, 0, 1},
	}
	for _, tt := range tests {
		a, c := nn.NewAlpha(0.7), nn.NewAlpha(0.7)
		got := progan.UpdateFadeIn(tt.step, tt.nSteps, a, nil, c)
		assert.InDelta(t, tt.want, got, 1e-12)
		assert.InDelta(t, tt.want, a.Value(), 1e-12)
		assert.InDelta(t, tt.want, c.Value(), 1e-12)
	}
}

func TestBuilderLogsStages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := newBuilder(t, cpu.New(), progan.WithLogger(zap.New(core)))
	_, err := b.Generator(8, 2, 4)
	require.NoError(t, err)

	entries := logs.FilterMessage("built stage").All()
	require.Len(t, entries, 2)
	fields := entries[1].ContextMap()
	assert.Equal(t, "generator", fields["network"])
	assert.EqualValues(t, 1, fields["stage"])
	assert.EqualValues(t, 8, fields["resolution"])
	assert.Equal(t, true, fields["fade_in"])
}

func TestHeadWeightsOption(t *testing.T) {
	head := nn.WeightConfig{Init: nn.Zeros{}}
	b := newBuilder(t, cpu.New(), progan.WithHeadWeights(head))
	discs, err := b.Discriminator(1, nil)
	require.NoError(t, err)

	layers := discs[0].Straight.Layers()
	dense, ok := layers[len(layers)-1].(*nn.Dense[cpuB])
	require.True(t, ok)
	for _, v := range dense.Kernel().Tensor().Data() {
		require.Zero(t, v)
	}
	assert.Nil(t, dense.Kernel().Constraint())
}
