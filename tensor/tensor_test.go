// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/progan/backend/cpu"
	"github.com/born-ml/progan/tensor"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = cpu.New()
}

// TestRawTensorAPI verifies the RawTensor alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want Float32", raw.DType())
	}
	if raw.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", raw.Device())
	}
	if n := raw.NumElements(); n != 6 {
		t.Errorf("NumElements() = %d, want 6", n)
	}
	if n := len(raw.Data()); n != 24 {
		t.Errorf("len(Data()) = %d, want 24", n)
	}
}

// TestSamePadding verifies even kernels pad bottom/right.
func TestSamePadding(t *testing.T) {
	tests := []struct {
		k    int
		want tensor.Padding
	}{
		{1, tensor.Padding{}},
		{3, tensor.Padding{Top: 1, Bottom: 1, Left: 1, Right: 1}},
		{4, tensor.Padding{Top: 1, Bottom: 2, Left: 1, Right: 2}},
	}
	for _, tt := range tests {
		if got := tensor.SamePadding(tt.k, tt.k); got != tt.want {
			t.Errorf("SamePadding(%d) = %+v, want %+v", tt.k, got, tt.want)
		}
	}
}

// TestCreation verifies the public constructors.
func TestCreation(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if got := x.At(1, 0); got != 3 {
		t.Errorf("At(1, 0) = %v, want 3", got)
	}

	full := tensor.Full[float32](tensor.Shape{3}, 2.5, backend)
	for i, v := range full.Data() {
		if v != 2.5 {
			t.Errorf("Full[%d] = %v, want 2.5", i, v)
		}
	}

	rng := rand.New(rand.NewSource(1))
	u := tensor.RandUniform[float64](tensor.Shape{100}, -1, 1, rng, backend)
	for i, v := range u.Data() {
		if v < -1 || v >= 1 {
			t.Errorf("RandUniform[%d] = %v, want [-1, 1)", i, v)
		}
	}

	cat := tensor.Cat([]*tensor.Tensor[float32, *cpu.Backend]{x, x}, 0)
	if !cat.Shape().Equal(tensor.Shape{4, 2}) {
		t.Errorf("Cat shape = %v, want [4 2]", cat.Shape())
	}
}
