// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Im2col convolutions with asymmetric padding
//   - Average pooling and nearest neighbour upsampling
//   - Float32 and Float64 support
//   - NumPy-compatible broadcasting
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/progan/autodiff"
//	    "github.com/born-ml/progan/backend/cpu"
//	    "github.com/born-ml/progan/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//
//	    // Wrap for training
//	    train := autodiff.New(cpu.New())
//	}
//
// # Performance
//
// Convolutions, matrix products and pooling split the batch (or rows)
// across goroutines. Small inputs run sequentially.
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Operations never write to
// their inputs.
package cpu
