package progan

import (
	"fmt"

	"github.com/born-ml/progan/internal/graph"
	"github.com/born-ml/progan/internal/nn"
)

// Generator builds nBlocks generator stages. The base stage maps a latent
// vector of latentDim values to an image of side inDim:
//
//	Dense → Reshape(F, inDim, inDim) → [Conv3×3 → PixelNorm → LeakyReLU]×2 → Conv1×1(RGB)
//
// Each further stage is AddGeneratorBlock applied to the previous
// stage's Straight model.
func (b *Builder[B]) Generator(latentDim, nBlocks, inDim int) ([]Stage[B], error) {
	switch {
	case latentDim <= 0:
		return nil, fmt.Errorf("generator: %w: latent dim must be positive, got %d", ErrInvalidConfig, latentDim)
	case nBlocks < 1:
		return nil, fmt.Errorf("generator: %w: need at least one block, got %d", ErrInvalidConfig, nBlocks)
	case inDim <= 0:
		return nil, fmt.Errorf("generator: %w: input dim must be positive, got %d", ErrInvalidConfig, inDim)
	}

	f := b.hyper.Filters
	p := fmt.Sprintf("g%d_", inDim)
	in := graph.Input[B]("latent", latentDim)
	out, err := from(in).then(
		nn.NewDense(p+"dense", latentDim, f*inDim*inDim, b.weights, b.backend),
		nn.NewReshape[B](p+"reshape", f, inDim, inDim),
	).then(b.genBlock(p, f)...).end()
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	model, err := graph.NewModel(fmt.Sprintf("generator_%dx%d", inDim, inDim), in, out)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	base := Stage[B]{Resolution: inDim, Straight: model, FadeIn: model}
	b.logStage("generator", 0, base)
	stages := []Stage[B]{base}
	for i := 1; i < nBlocks; i++ {
		next, err := b.AddGeneratorBlock(stages[i-1].Straight)
		if err != nil {
			return nil, fmt.Errorf("generator stage %d: %w", i, err)
		}
		b.logStage("generator", i, next)
		stages = append(stages, next)
	}
	return stages, nil
}

// genBlock returns [Conv3×3 → PixelNorm → LeakyReLU]×2 → Conv1×1(RGB),
// with the first conv reading in channels.
func (b *Builder[B]) genBlock(p string, in int) []graph.Layer[B] {
	return []graph.Layer[B]{
		b.conv(p+"conv1", in, 3),
		nn.NewPixelNorm[B](p + "norm1"),
		b.leaky(p + "act1"),
		b.conv(p+"conv2", b.hyper.Filters, 3),
		nn.NewPixelNorm[B](p + "norm2"),
		b.leaky(p + "act2"),
		nn.NewConv2D(p+"to_rgb", b.hyper.Filters, b.hyper.ImageChannels, 1, b.weights, b.backend),
	}
}

// AddGeneratorBlock grows old by one resolution.
//
// The features feeding old's output layer are upsampled ×2 and passed
// through a new block ending in its own 1×1 output conv; that is the
// Straight model. The FadeIn model also re-applies old's output layer
// object to the upsampled features and blends the two images with
// WeightedSum([old, new]).
//
// old must end in a single-input layer, as every generator stage does.
func (b *Builder[B]) AddGeneratorBlock(old *graph.Model[B]) (Stage[B], error) {
	if old == nil {
		return Stage[B]{}, fmt.Errorf("add generator block: %w: nil model", ErrInvalidConfig)
	}
	oldOut := old.Output()
	if len(oldOut.Inputs()) != 1 {
		return Stage[B]{}, fmt.Errorf("add generator block: %w: %s output layer has %d inputs, want 1",
			ErrInvalidConfig, old.Name(), len(oldOut.Inputs()))
	}
	features := oldOut.Inputs()[0]
	fs := features.Shape()
	if len(fs) != 3 {
		return Stage[B]{}, fmt.Errorf("add generator block: %w: features %v are not (C, H, W)", graph.ErrShapeMismatch, fs)
	}

	res := fs[2] * 2
	p := fmt.Sprintf("g%d_", res)
	alpha := b.Alpha(res)

	up, err := graph.Apply[B](nn.NewUpSampling2D[B](p+"upsample"), features)
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add generator block: %w", err)
	}
	newImg, err := from(up).then(b.genBlock(p, fs[0])...).end()
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add generator block: %w", err)
	}
	straight, err := graph.NewModel(fmt.Sprintf("generator_%dx%d", res, res), old.Input(), newImg)
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add generator block: %w", err)
	}

	oldImg, err := graph.Apply(oldOut.Layer(), up)
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add generator block: %w", err)
	}
	merged, err := graph.Apply[B](nn.NewWeightedSum[B](p+"fade", alpha), oldImg, newImg)
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add generator block: %w", err)
	}
	fade, err := graph.NewModel(fmt.Sprintf("generator_%dx%d_fade", res, res), old.Input(), merged)
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add generator block: %w", err)
	}

	return Stage[B]{Resolution: res, Straight: straight, FadeIn: fade, Alpha: alpha}, nil
}
