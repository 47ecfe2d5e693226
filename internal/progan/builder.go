// Package progan builds progressively growing GAN generators and
// discriminators.
//
// A network is a list of stages. Stage i works on images of side
// base·2^i and has two models: Straight, which uses only the stage's own
// top block, and FadeIn, which blends that block with the previous
// stage's path using a WeightedSum driven by the stage's Alpha. Every
// stage re-applies the previous stage's layer objects, so all stages of
// a network train one shared set of weights.
//
// Example:
//
//	b, _ := progan.NewBuilder(backend, nn.NewWeightConfig(0.02, 1, seed), progan.DefaultHyper())
//	gens, _ := b.Generator(100, 3, 4)
//	discs, _ := b.Discriminator(3, nil)
//	gans, _ := b.Composite(gens, discs)
//	progan.UpdateFadeIn(step, nSteps, gens[1].Alpha)
package progan

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/born-ml/progan/internal/graph"
	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/optim"
	"github.com/born-ml/progan/internal/tensor"
)

// ErrInvalidConfig is returned for out-of-range builder arguments.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultInputLayers is the number of leading discriminator layers (input,
// 1×1 conv, activation) that a new block replaces.
const DefaultInputLayers = 3

// Hyper holds the architecture hyper-parameters shared by all stages.
type Hyper struct {
	Filters       int     // feature maps per conv layer
	ImageChannels int     // channels of generated and consumed images
	LeakySlope    float64 // LeakyReLU negative slope
	Seed          int64   // seed of the discriminator head initializer
	Adam          optim.AdamConfig
}

// DefaultHyper returns 128 filters, RGB images, slope 0.2 and the PGGAN
// Adam setting.
func DefaultHyper() Hyper {
	return Hyper{
		Filters:       128,
		ImageChannels: 3,
		LeakySlope:    0.2,
		Seed:          1,
		Adam:          optim.DefaultAdamConfig(),
	}
}

// Validate checks the hyper-parameters.
func (h Hyper) Validate() error {
	switch {
	case h.Filters <= 0:
		return fmt.Errorf("%w: filters must be positive, got %d", ErrInvalidConfig, h.Filters)
	case h.ImageChannels <= 0:
		return fmt.Errorf("%w: image channels must be positive, got %d", ErrInvalidConfig, h.ImageChannels)
	case h.LeakySlope < 0:
		return fmt.Errorf("%w: leaky slope must be non-negative, got %g", ErrInvalidConfig, h.LeakySlope)
	}
	if err := h.Adam.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Stage is one resolution of a growing network.
type Stage[B tensor.Backend] struct {
	// Resolution is the image side the stage generates or consumes.
	Resolution int
	Straight   *graph.Model[B]
	FadeIn     *graph.Model[B]
	// Alpha drives FadeIn's blend. It is nil for the base stage, whose
	// FadeIn is Straight.
	Alpha *nn.Alpha
}

// Builder creates the layers of both networks from one weight
// configuration.
//
// A Builder hands out one Alpha per resolution, so the generator,
// discriminator and composite stages of a resolution fade in together.
type Builder[B tensor.Backend] struct {
	backend B
	weights nn.WeightConfig
	head    nn.WeightConfig
	hyper   Hyper
	logger  *zap.Logger

	mu     sync.Mutex
	alphas map[int]*nn.Alpha
}

// BuilderOption configures a Builder.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	logger *zap.Logger
	head   *nn.WeightConfig
}

// WithLogger sets the logger stage construction is reported to.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(o *builderOptions) {
		o.logger = l
	}
}

// WithHeadWeights overrides the discriminator's Dense(1) weights, which
// default to unconstrained Glorot uniform.
func WithHeadWeights(w nn.WeightConfig) BuilderOption {
	return func(o *builderOptions) {
		o.head = &w
	}
}

// NewBuilder creates a builder. weights initializes and constrains every
// conv layer and the generator's input Dense.
func NewBuilder[B tensor.Backend](backend B, weights nn.WeightConfig, hyper Hyper, opts ...BuilderOption) (*Builder[B], error) {
	if weights.Init == nil {
		return nil, fmt.Errorf("%w: weight config has no initializer", ErrInvalidConfig)
	}
	if err := hyper.Validate(); err != nil {
		return nil, err
	}
	options := &builderOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(options)
	}
	head := nn.WeightConfig{Init: nn.NewGlorotUniform(hyper.Seed)}
	if options.head != nil {
		head = *options.head
	}
	if options.logger == nil {
		options.logger = zap.NewNop()
	}

	return &Builder[B]{
		backend: backend,
		weights: weights,
		head:    head,
		hyper:   hyper,
		logger:  options.logger,
		alphas:  make(map[int]*nn.Alpha),
	}, nil
}

// Hyper returns the builder's hyper-parameters.
func (b *Builder[B]) Hyper() Hyper { return b.hyper }

// Backend returns the backend layers are allocated on.
func (b *Builder[B]) Backend() B { return b.backend }

// Alpha returns the fade-in handle for a resolution, creating it at 0.
func (b *Builder[B]) Alpha(resolution int) *nn.Alpha {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.alphas[resolution]
	if !ok {
		a = nn.NewAlpha(0)
		b.alphas[resolution] = a
	}
	return a
}

// Alphas returns every handle created so far, keyed by resolution.
func (b *Builder[B]) Alphas() map[int]*nn.Alpha {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[int]*nn.Alpha, len(b.alphas))
	for r, a := range b.alphas {
		out[r] = a
	}
	return out
}

func (b *Builder[B]) conv(name string, in, kernel int) *nn.Conv2D[B] {
	return nn.NewConv2D(name, in, b.hyper.Filters, kernel, b.weights, b.backend)
}

func (b *Builder[B]) leaky(name string) *nn.LeakyReLU[B] {
	return nn.NewLeakyReLU[B](name, b.hyper.LeakySlope)
}

// compile attaches the Wasserstein loss and a fresh Adam over m's
// trainable parameters.
func (b *Builder[B]) compile(m *graph.Model[B]) {
	m.Compile(nn.NewWassersteinLoss[B](), optim.NewAdam(m.TrainableParameters(), b.hyper.Adam))
}

func (b *Builder[B]) logStage(kind string, i int, s Stage[B]) {
	b.logger.Debug("built stage",
		zap.String("network", kind),
		zap.Int("stage", i),
		zap.Int("resolution", s.Resolution),
		zap.Int("params", s.Straight.CountParams()),
		zap.Bool("fade_in", s.Alpha != nil),
	)
}

// chain applies single-input layers one after another and keeps the
// first error.
type chain[B tensor.Backend] struct {
	node *graph.Node[B]
	err  error
}

func from[B tensor.Backend](n *graph.Node[B]) *chain[B] {
	return &chain[B]{node: n}
}

func (c *chain[B]) then(layers ...graph.Layer[B]) *chain[B] {
	for _, l := range layers {
		if c.err != nil {
			return c
		}
		c.node, c.err = graph.Apply(l, c.node)
	}
	return c
}

func (c *chain[B]) end() (*graph.Node[B], error) {
	return c.node, c.err
}
