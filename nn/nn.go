// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/tensor"
)

// ErrShapeMismatch is returned when a layer cannot accept its inputs.
var ErrShapeMismatch = nn.ErrShapeMismatch

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Weights

// Initializer fills a new weight tensor.
type Initializer = nn.Initializer

// RandomNormal draws N(Mean, Stddev²) values from its own seeded stream.
type RandomNormal = nn.RandomNormal

// NewRandomNormal creates a seeded normal initializer.
func NewRandomNormal(mean, stddev float64, seed int64) *RandomNormal {
	return nn.NewRandomNormal(mean, stddev, seed)
}

// GlorotUniform draws from U(-l, l) with l = sqrt(6 / (fanIn + fanOut)).
type GlorotUniform = nn.GlorotUniform

// NewGlorotUniform creates a seeded Glorot initializer.
func NewGlorotUniform(seed int64) *GlorotUniform {
	return nn.NewGlorotUniform(seed)
}

// Zeros fills with zeros.
type Zeros = nn.Zeros

// Constraint projects weights after each optimizer update.
type Constraint = nn.Constraint

// MaxNorm bounds the L2 norm of each output unit's weights.
type MaxNorm = nn.MaxNorm

// WeightConfig is the initializer/constraint pair shared by a builder.
type WeightConfig = nn.WeightConfig

// NewWeightConfig returns N(0, stddev²) weights bounded by MaxNorm(maxNorm).
//
// Example:
//
//	w := nn.NewWeightConfig(0.02, 1.0, 42)
func NewWeightConfig(stddev, maxNorm float64, seed int64) WeightConfig {
	return nn.NewWeightConfig(stddev, maxNorm, seed)
}

// Layers

// Conv2D is a stride-1 convolution with same padding and bias.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a square-kernel convolution.
//
// Example:
//
//	conv := nn.NewConv2D("d8_conv1", 128, 128, 3, w, backend)
func NewConv2D[B tensor.Backend](name string, inChannels, filters, kernelSize int, w WeightConfig, backend B) *Conv2D[B] {
	return nn.NewConv2D(name, inChannels, filters, kernelSize, w, backend)
}

// Dense is a fully connected layer.
type Dense[B tensor.Backend] = nn.Dense[B]

// NewDense creates a dense layer.
func NewDense[B tensor.Backend](name string, inFeatures, units int, w WeightConfig, backend B) *Dense[B] {
	return nn.NewDense(name, inFeatures, units, w, backend)
}

// LeakyReLU is max(x, alpha·x).
type LeakyReLU[B tensor.Backend] = nn.LeakyReLU[B]

// NewLeakyReLU creates a leaky ReLU.
func NewLeakyReLU[B tensor.Backend](name string, alpha float64) *LeakyReLU[B] {
	return nn.NewLeakyReLU[B](name, alpha)
}

// PixelNorm normalizes each pixel's feature vector to unit RMS.
type PixelNorm[B tensor.Backend] = nn.PixelNorm[B]

// NewPixelNorm creates a pixel norm layer.
func NewPixelNorm[B tensor.Backend](name string) *PixelNorm[B] {
	return nn.NewPixelNorm[B](name)
}

// MiniBatchStdev appends the mean batch standard deviation as a channel.
type MiniBatchStdev[B tensor.Backend] = nn.MiniBatchStdev[B]

// NewMiniBatchStdev creates a minibatch standard deviation layer.
func NewMiniBatchStdev[B tensor.Backend](name string) *MiniBatchStdev[B] {
	return nn.NewMiniBatchStdev[B](name)
}

// UpSampling2D doubles height and width by nearest neighbour.
type UpSampling2D[B tensor.Backend] = nn.UpSampling2D[B]

// NewUpSampling2D creates an upsampling layer.
func NewUpSampling2D[B tensor.Backend](name string) *UpSampling2D[B] {
	return nn.NewUpSampling2D[B](name)
}

// AveragePooling2D halves height and width.
type AveragePooling2D[B tensor.Backend] = nn.AveragePooling2D[B]

// NewAveragePooling2D creates a 2×2 average pooling layer.
func NewAveragePooling2D[B tensor.Backend](name string) *AveragePooling2D[B] {
	return nn.NewAveragePooling2D[B](name)
}

// Flatten collapses per-sample dimensions.
type Flatten[B tensor.Backend] = nn.Flatten[B]

// NewFlatten creates a flatten layer.
func NewFlatten[B tensor.Backend](name string) *Flatten[B] {
	return nn.NewFlatten[B](name)
}

// Reshape changes the per-sample shape.
type Reshape[B tensor.Backend] = nn.Reshape[B]

// NewReshape creates a reshape layer.
func NewReshape[B tensor.Backend](name string, target ...int) *Reshape[B] {
	return nn.NewReshape[B](name, target...)
}

// Fade-in

// Alpha is the blend coefficient a WeightedSum reads.
type Alpha = nn.Alpha

// NewAlpha creates a handle set to v.
func NewAlpha(v float64) *Alpha {
	return nn.NewAlpha(v)
}

// WeightedSum computes (1-alpha)·in[0] + alpha·in[1].
type WeightedSum[B tensor.Backend] = nn.WeightedSum[B]

// NewWeightedSum creates a blend reading alpha.
func NewWeightedSum[B tensor.Backend](name string, alpha *Alpha) *WeightedSum[B] {
	return nn.NewWeightedSum[B](name, alpha)
}

// Losses

// Loss reduces (y_true, y_pred) to a scalar.
type Loss[B tensor.Backend] = nn.Loss[B]

// WassersteinLoss is mean(y_true · y_pred).
type WassersteinLoss[B tensor.Backend] = nn.WassersteinLoss[B]

// NewWassersteinLoss creates a Wasserstein loss.
func NewWassersteinLoss[B tensor.Backend]() WassersteinLoss[B] {
	return nn.NewWassersteinLoss[B]()
}
