// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph connects layers into models that share weights by
// reference.
//
// Example:
//
//	in := graph.Input[*cpu.Backend]("latent", 100)
//	h, err := graph.Apply[*cpu.Backend](dense, in)
//	...
//	m, err := graph.NewModel("generator", in, out)
//	y, err := m.Predict(z)
package graph

import (
	"github.com/born-ml/progan/internal/graph"
	"github.com/born-ml/progan/internal/tensor"
)

// Errors returned by graph construction and training.
var (
	ErrShapeMismatch = graph.ErrShapeMismatch
	ErrDisconnected  = graph.ErrDisconnected
	ErrNotCompiled   = graph.ErrNotCompiled
	ErrNoGradients   = graph.ErrNoGradients
)

// Layer is anything that can be applied to nodes.
type Layer[B tensor.Backend] = graph.Layer[B]

// Node is one application of a layer.
type Node[B tensor.Backend] = graph.Node[B]

// Model is the subgraph between an input and an output node.
type Model[B tensor.Backend] = graph.Model[B]

// SummaryRow describes one layer of a model.
type SummaryRow = graph.SummaryRow

// Optimizer is what Compile accepts.
type Optimizer = graph.Optimizer

// FrozenLayer is a layer excluded from training.
type FrozenLayer[B tensor.Backend] = graph.FrozenLayer[B]

// Input creates a source node with a per-sample shape.
func Input[B tensor.Backend](name string, shape ...int) *Node[B] {
	return graph.Input[B](name, shape...)
}

// Apply connects layer to inputs.
func Apply[B tensor.Backend](layer Layer[B], inputs ...*Node[B]) (*Node[B], error) {
	return graph.Apply(layer, inputs...)
}

// NewModel collects every node between input and output.
func NewModel[B tensor.Backend](name string, input, output *Node[B]) (*Model[B], error) {
	return graph.NewModel(name, input, output)
}

// Frozen wraps layer so models containing it do not train it.
func Frozen[B tensor.Backend](layer Layer[B]) *FrozenLayer[B] {
	return graph.Frozen(layer)
}
