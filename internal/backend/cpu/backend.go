// Package cpu implements the pure-Go reference backend.
package cpu

import (
	"fmt"

	"github.com/born-ml/progan/internal/parallel"
	"github.com/born-ml/progan/internal/tensor"
)

// CPUBackend runs every tensor op on the host, splitting batch-level work
// across goroutines.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

var _ tensor.Backend = (*CPUBackend)(nil)

// New creates a CPU backend using every available core.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallelism setting.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{device: tensor.CPU, par: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

func (cpu *CPUBackend) alloc(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	r, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return r
}

type float interface {
	float32 | float64
}

// view returns r's elements typed as E. The caller has already dispatched on
// r's dtype.
func view[E float](r *tensor.RawTensor) []E {
	var zero E
	switch any(zero).(type) {
	case float32:
		return any(r.AsFloat32()).([]E)
	default:
		return any(r.AsFloat64()).([]E)
	}
}

// dispatch runs f32 or f64 depending on dtype.
func dispatch(op string, dtype tensor.DataType, f32, f64 func()) {
	switch dtype {
	case tensor.Float32:
		f32()
	case tensor.Float64:
		f64()
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, dtype))
	}
}

func sameDType(op string, ts ...*tensor.RawTensor) {
	for _, t := range ts[1:] {
		if t.DType() != ts[0].DType() {
			panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, ts[0].DType(), t.DType()))
		}
	}
}
