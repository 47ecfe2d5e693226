package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/progan/internal/tensor"
)

// Constraint projects a weight tensor back into an allowed set after an
// optimizer update.
type Constraint interface {
	Apply(data []float32, shape tensor.Shape)
	String() string
}

// MaxNorm rescales every output unit's incoming weight vector so that its
// L2 norm is at most Max.
//
// The output unit is dimension 0 of the weight: a filter of a
// [out, in, kh, kw] convolution kernel or a row of an [out, in] dense
// kernel.
type MaxNorm struct {
	Max float64
}

// Apply implements Constraint.
func (m MaxNorm) Apply(data []float32, shape tensor.Shape) {
	if len(shape) == 0 || shape[0] == 0 {
		return
	}
	units := shape[0]
	width := len(data) / units
	for u := 0; u < units; u++ {
		row := data[u*width : (u+1)*width]
		var sq float64
		for _, v := range row {
			sq += float64(v) * float64(v)
		}
		norm := math.Sqrt(sq)
		if norm <= m.Max {
			continue
		}
		scale := float32(m.Max / (norm + 1e-7))
		for i := range row {
			row[i] *= scale
		}
	}
}

func (m MaxNorm) String() string { return fmt.Sprintf("MaxNorm(%g)", m.Max) }

// WeightConfig is the initializer/constraint pair shared by every weighted
// layer a builder creates.
type WeightConfig struct {
	Init       Initializer
	Constraint Constraint // nil means unconstrained
}

// NewWeightConfig returns the progressive-GAN setting:
// N(0, stddev²) weights bounded by MaxNorm(maxNorm). A non-positive
// maxNorm leaves the weights unconstrained.
func NewWeightConfig(stddev, maxNorm float64, seed int64) WeightConfig {
	w := WeightConfig{Init: NewRandomNormal(0, stddev, seed)}
	if maxNorm > 0 {
		w.Constraint = MaxNorm{Max: maxNorm}
	}
	return w
}
