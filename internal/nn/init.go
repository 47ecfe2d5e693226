package nn

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// Initializer fills a freshly allocated weight tensor.
//
// fanIn and fanOut follow the usual convention: for a dense kernel they are
// the input and output widths; for a convolution kernel they are
// kh*kw*in_channels and kh*kw*out_channels.
//
// One Initializer is typically shared by every layer of a model. Its
// random stream advances with each call, so construction order decides
// which weights each layer receives.
type Initializer interface {
	Fill(data []float32, fanIn, fanOut int)
	String() string
}

// RandomNormal draws weights from N(Mean, Stddev²).
type RandomNormal struct {
	Mean   float64
	Stddev float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomNormal creates a RandomNormal initializer with its own seeded
// generator.
func NewRandomNormal(mean, stddev float64, seed int64) *RandomNormal {
	return &RandomNormal{
		Mean:   mean,
		Stddev: stddev,
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // weights, not secrets
	}
}

// Fill implements Initializer.
func (r *RandomNormal) Fill(data []float32, _, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range data {
		data[i] = float32(r.Mean + r.Stddev*r.rng.NormFloat64())
	}
}

func (r *RandomNormal) String() string {
	return fmt.Sprintf("RandomNormal(mean=%g, stddev=%g)", r.Mean, r.Stddev)
}

// GlorotUniform draws from U(-limit, limit) with
// limit = sqrt(6 / (fanIn + fanOut)).
type GlorotUniform struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGlorotUniform creates a GlorotUniform initializer with its own seeded
// generator.
func NewGlorotUniform(seed int64) *GlorotUniform {
	return &GlorotUniform{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // weights, not secrets
}

// Fill implements Initializer.
func (g *GlorotUniform) Fill(data []float32, fanIn, fanOut int) {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range data {
		data[i] = float32((g.rng.Float64()*2 - 1) * limit)
	}
}

func (g *GlorotUniform) String() string { return "GlorotUniform" }

// Zeros leaves weights at zero. Used for biases.
type Zeros struct{}

// Fill implements Initializer.
func (Zeros) Fill(data []float32, _, _ int) { clear(data) }

func (Zeros) String() string { return "Zeros" }
