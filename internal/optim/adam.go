package optim

import (
	"fmt"
	"math"

	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/tensor"
)

// AdamConfig holds Adam's hyper-parameters. Every field is used as given:
// a zero Beta1 means no momentum, not "use the default".
type AdamConfig struct {
	LR    float32
	Beta1 float32
	Beta2 float32
	Eps   float32
}

// DefaultAdamConfig returns the progressive-GAN setting:
// lr=0.001, beta1=0, beta2=0.99, eps=1e-8.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{LR: 0.001, Beta1: 0, Beta2: 0.99, Eps: 1e-8}
}

// Validate checks the ranges Adam's update rule needs.
func (c AdamConfig) Validate() error {
	switch {
	case c.LR <= 0:
		return fmt.Errorf("adam: learning rate must be positive, got %g", c.LR)
	case c.Beta1 < 0 || c.Beta1 >= 1:
		return fmt.Errorf("adam: beta1 must be in [0, 1), got %g", c.Beta1)
	case c.Beta2 < 0 || c.Beta2 >= 1:
		return fmt.Errorf("adam: beta2 must be in [0, 1), got %g", c.Beta2)
	case c.Eps <= 0:
		return fmt.Errorf("adam: eps must be positive, got %g", c.Eps)
	}
	return nil
}

// Adam implements Adaptive Moment Estimation.
//
// Update rule:
//
//	m_t   = beta1 * m_{t-1} + (1-beta1) * g
//	v_t   = beta2 * v_{t-1} + (1-beta2) * g²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	p     = p - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	cfg    AdamConfig
	t      int
	m      map[*nn.Parameter[B]][]float32
	v      map[*nn.Parameter[B]][]float32
}

// NewAdam creates an Adam optimizer over params.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], cfg AdamConfig) *Adam[B] {
	return &Adam[B]{
		params: params,
		cfg:    cfg,
		m:      make(map[*nn.Parameter[B]][]float32, len(params)),
		v:      make(map[*nn.Parameter[B]][]float32, len(params)),
	}
}

// Config returns the hyper-parameters.
func (a *Adam[B]) Config() AdamConfig { return a.cfg }

// Steps returns how many updates have been applied.
func (a *Adam[B]) Steps() int { return a.t }

// Step performs one Adam update, then applies parameter constraints.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++
	bc1 := 1 - math.Pow(float64(a.cfg.Beta1), float64(a.t))
	bc2 := 1 - math.Pow(float64(a.cfg.Beta2), float64(a.t))
	b1, b2 := float64(a.cfg.Beta1), float64(a.cfg.Beta2)
	lr, eps := float64(a.cfg.LR), float64(a.cfg.Eps)

	for _, p := range a.params {
		g := gradientOf(p, grads)
		if g == nil {
			continue
		}
		p.SetGrad(tensor.New[float32](g, p.Tensor().Backend()))

		data := p.Tensor().Data()
		m, ok := a.m[p]
		if !ok {
			m = make([]float32, len(data))
			a.m[p] = m
		}
		v, ok := a.v[p]
		if !ok {
			v = make([]float32, len(data))
			a.v[p] = v
		}

		for i, gi := range g.AsFloat32() {
			gv := float64(gi)
			mi := b1*float64(m[i]) + (1-b1)*gv
			vi := b2*float64(v[i]) + (1-b2)*gv*gv
			m[i], v[i] = float32(mi), float32(vi)
			data[i] -= float32(lr * (mi / bc1) / (math.Sqrt(vi/bc2) + eps))
		}
		p.ApplyConstraint()
	}
}

// ZeroGrad clears stored parameter gradients.
func (a *Adam[B]) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}

// GetLR returns the learning rate.
func (a *Adam[B]) GetLR() float32 { return a.cfg.LR }

var _ Optimizer = (*Adam[tensor.Backend])(nil)
