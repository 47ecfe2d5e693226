// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides typed tensors over a pluggable compute backend.
//
// # Overview
//
// Tensors are the data every progan layer consumes and produces. This
// package provides:
//   - Generic type-safe tensors (Tensor[T, B]) for float32 and float64
//   - NumPy-style broadcasting for element-wise operations
//   - Reshape views that share storage
//   - A Backend interface covering the ops progressive GANs need:
//     convolution with asymmetric padding, average pooling, nearest
//     neighbour upsampling and leaky ReLU, each with its backward pass
//
// Image tensors use NCHW layout: [batch, channels, height, width].
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/progan/backend/cpu"
//	    "github.com/born-ml/progan/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//	    w := x.MatMul(y.Transpose())
//	}
//
// # Broadcasting
//
//	a := tensor.Zeros[float32](tensor.Shape{3, 1}, backend)     // (3, 1)
//	b := tensor.Ones[float32](tensor.Shape{3, 4}, backend)      // (3, 4)
//	c := a.Add(b)                                                // (3, 4)
//
// # Errors
//
// Constructors return errors. Operations panic with an "op: reason"
// message on programmer errors such as incompatible shapes.
package tensor
