package progan

import (
	"fmt"

	"github.com/born-ml/progan/internal/graph"
)

// Composite chains each generator stage into a frozen copy of the
// matching discriminator stage, Straight with Straight and FadeIn with
// FadeIn. Training a composite model updates only generator weights.
//
// The composite stages reuse the generator stages' Alpha handles.
func (b *Builder[B]) Composite(gens, discs []Stage[B]) ([]Stage[B], error) {
	if len(gens) == 0 || len(gens) != len(discs) {
		return nil, fmt.Errorf("composite: %w: %d generator stages, %d discriminator stages",
			ErrInvalidConfig, len(gens), len(discs))
	}

	stages := make([]Stage[B], 0, len(gens))
	for i := range gens {
		g, d := gens[i], discs[i]
		straight, err := b.composite(fmt.Sprintf("composite_%d", i), g.Straight, d.Straight)
		if err != nil {
			return nil, fmt.Errorf("composite stage %d: %w", i, err)
		}
		fade := straight
		if g.FadeIn != g.Straight || d.FadeIn != d.Straight {
			fade, err = b.composite(fmt.Sprintf("composite_%d_fade", i), g.FadeIn, d.FadeIn)
			if err != nil {
				return nil, fmt.Errorf("composite stage %d: %w", i, err)
			}
		}
		s := Stage[B]{Resolution: g.Resolution, Straight: straight, FadeIn: fade, Alpha: g.Alpha}
		b.logStage("composite", i, s)
		stages = append(stages, s)
	}
	return stages, nil
}

func (b *Builder[B]) composite(name string, gen, disc *graph.Model[B]) (*graph.Model[B], error) {
	in := graph.Input[B]("latent", gen.InputShape()...)
	out, err := from(in).then(gen, graph.Frozen[B](disc)).end()
	if err != nil {
		return nil, err
	}
	m, err := graph.NewModel(name, in, out)
	if err != nil {
		return nil, err
	}
	b.compile(m)
	return m, nil
}
