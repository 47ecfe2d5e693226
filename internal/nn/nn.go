// Package nn implements the layers, initializers, constraints and losses
// that progressive GAN graphs are assembled from.
//
// Every layer works on float32 NCHW tensors and satisfies graph.Layer: it
// has a name, computes its per-sample output shape from its inputs'
// per-sample shapes, runs a forward pass and exposes its parameters.
// Layers hold their weights by pointer, so applying one layer in several
// graphs shares those weights.
package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/progan/internal/tensor"
)

// ErrShapeMismatch is returned when a layer cannot accept its inputs'
// shapes.
var ErrShapeMismatch = errors.New("shape mismatch")

// Float32 is the tensor type every layer consumes and produces.
type Float32[B tensor.Backend] = tensor.Tensor[float32, B]

func shapeErr(layer, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", layer, ErrShapeMismatch, fmt.Sprintf(format, args...))
}

// single returns the only input of a one-input layer.
func single(layer string, inputs []tensor.Shape) (tensor.Shape, error) {
	if len(inputs) != 1 {
		return nil, shapeErr(layer, "expected 1 input, got %d", len(inputs))
	}
	return inputs[0], nil
}

// image returns the only input of a one-input layer that expects (C, H, W).
func image(layer string, inputs []tensor.Shape) (tensor.Shape, error) {
	in, err := single(layer, inputs)
	if err != nil {
		return nil, err
	}
	if len(in) != 3 {
		return nil, shapeErr(layer, "expected (C, H, W) input, got %v", in)
	}
	return in, nil
}

func mustOne[B tensor.Backend](layer string, inputs []*Float32[B]) *Float32[B] {
	if len(inputs) != 1 {
		panic(fmt.Sprintf("%s: expected 1 input, got %d", layer, len(inputs)))
	}
	return inputs[0]
}

// batched prepends the batch size to a per-sample shape.
func batched(n int, sample tensor.Shape) []int {
	return append([]int{n}, sample...)
}
