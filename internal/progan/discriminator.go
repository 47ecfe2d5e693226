package progan

import (
	"fmt"

	"github.com/born-ml/progan/internal/graph"
	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/tensor"
)

// Discriminator builds nBlocks compiled discriminator stages. The base
// stage scores images of inputShape (C, H, W), which defaults to
// (ImageChannels, 4, 4) when nil:
//
//	Conv1×1 → LeakyReLU → MiniBatchStdev → Conv3×3 → LeakyReLU →
//	Conv4×4 → LeakyReLU → Flatten → Dense(1)
//
// Each further stage is AddDiscriminatorBlock applied to the previous
// stage's Straight model with DefaultInputLayers.
func (b *Builder[B]) Discriminator(nBlocks int, inputShape tensor.Shape) ([]Stage[B], error) {
	if nBlocks < 1 {
		return nil, fmt.Errorf("discriminator: %w: need at least one block, got %d", ErrInvalidConfig, nBlocks)
	}
	if inputShape == nil {
		inputShape = tensor.Shape{b.hyper.ImageChannels, 4, 4}
	}
	if len(inputShape) != 3 || inputShape.Validate() != nil || inputShape.NumElements() == 0 {
		return nil, fmt.Errorf("discriminator: %w: input shape %v is not a positive (C, H, W)", ErrInvalidConfig, inputShape)
	}

	c, h, w := inputShape[0], inputShape[1], inputShape[2]
	f := b.hyper.Filters
	p := fmt.Sprintf("d%d_", w)
	in := graph.Input[B]("image", c, h, w)
	out, err := from(in).then(
		b.conv(p+"from_rgb", c, 1),
		b.leaky(p+"act0"),
		nn.NewMiniBatchStdev[B](p+"stddev"),
		b.conv(p+"conv1", f+1, 3),
		b.leaky(p+"act1"),
		b.conv(p+"conv2", f, 4),
		b.leaky(p+"act2"),
		nn.NewFlatten[B](p+"flatten"),
		nn.NewDense(p+"score", f*h*w, 1, b.head, b.backend),
	).end()
	if err != nil {
		return nil, fmt.Errorf("discriminator: %w", err)
	}
	model, err := graph.NewModel(fmt.Sprintf("discriminator_%dx%d", h, w), in, out)
	if err != nil {
		return nil, fmt.Errorf("discriminator: %w", err)
	}
	b.compile(model)

	base := Stage[B]{Resolution: w, Straight: model, FadeIn: model}
	b.logStage("discriminator", 0, base)
	stages := []Stage[B]{base}
	for i := 1; i < nBlocks; i++ {
		next, err := b.AddDiscriminatorBlock(stages[i-1].Straight, DefaultInputLayers)
		if err != nil {
			return nil, fmt.Errorf("discriminator stage %d: %w", i, err)
		}
		b.logStage("discriminator", i, next)
		stages = append(stages, next)
	}
	return stages, nil
}

// AddDiscriminatorBlock grows old to twice its input resolution.
//
// old.Layers()[:nInputLayers] is old's input stage (the input layer and
// its 1×1 conv with activation for DefaultInputLayers); the rest is its
// shared tail. The Straight model feeds a new image input through
//
//	Conv1×1 → LeakyReLU → [Conv3×3 → LeakyReLU]×2 → AveragePooling2D
//
// and then through the tail. The FadeIn model additionally average-pools
// the new input, runs it through old's input stage layer objects and
// blends that with the new block by WeightedSum([old, new]) before the
// tail. Both models are compiled.
//
// old must be a Straight model, whose layers form a single chain.
func (b *Builder[B]) AddDiscriminatorBlock(old *graph.Model[B], nInputLayers int) (Stage[B], error) {
	if old == nil {
		return Stage[B]{}, fmt.Errorf("add discriminator block: %w: nil model", ErrInvalidConfig)
	}
	layers := old.Layers()
	if nInputLayers < 2 || nInputLayers >= len(layers) {
		return Stage[B]{}, fmt.Errorf("add discriminator block: %w: input layers %d out of range [2, %d)",
			ErrInvalidConfig, nInputLayers, len(layers))
	}
	s := old.InputShape()
	if len(s) != 3 {
		return Stage[B]{}, fmt.Errorf("add discriminator block: %w: input %v is not (C, H, W)", graph.ErrShapeMismatch, s)
	}

	c, h, w := s[0], s[1]*2, s[2]*2
	f := b.hyper.Filters
	p := fmt.Sprintf("d%d_", w)
	alpha := b.Alpha(w)
	inputStage, tail := layers[1:nInputLayers], layers[nInputLayers:]

	in := graph.Input[B]("image", c, h, w)
	newBlock, err := from(in).then(
		b.conv(p+"from_rgb", c, 1),
		b.leaky(p+"act0"),
		b.conv(p+"conv1", f, 3),
		b.leaky(p+"act1"),
		b.conv(p+"conv2", f, 3),
		b.leaky(p+"act2"),
		nn.NewAveragePooling2D[B](p+"pool"),
	).end()
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add discriminator block: %w", err)
	}

	out, err := from(newBlock).then(tail...).end()
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add discriminator block: %w", err)
	}
	straight, err := graph.NewModel(fmt.Sprintf("discriminator_%dx%d", h, w), in, out)
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add discriminator block: %w", err)
	}
	b.compile(straight)

	oldBlock, err := from(in).then(nn.NewAveragePooling2D[B](p + "downsample")).then(inputStage...).end()
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add discriminator block: %w", err)
	}
	merged, err := graph.Apply[B](nn.NewWeightedSum[B](p+"fade", alpha), oldBlock, newBlock)
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add discriminator block: %w", err)
	}
	out, err = from(merged).then(tail...).end()
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add discriminator block: %w", err)
	}
	fade, err := graph.NewModel(fmt.Sprintf("discriminator_%dx%d_fade", h, w), in, out)
	if err != nil {
		return Stage[B]{}, fmt.Errorf("add discriminator block: %w", err)
	}
	b.compile(fade)

	return Stage[B]{Resolution: w, Straight: straight, FadeIn: fade, Alpha: alpha}, nil
}
