package graph

import (
	"github.com/born-ml/progan/internal/tensor"
)

// SummaryRow describes one layer of a model.
type SummaryRow struct {
	Name        string
	Kind        string
	OutputShape tensor.Shape
	// Multiple is set when the layer is applied more than once in the
	// model; OutputShape is then the shape of its first application.
	Multiple bool
	Params   int
}

// Summary returns one row per layer, in Layers order.
func (m *Model[B]) Summary() []SummaryRow {
	first := make(map[Layer[B]]*Node[B], len(m.layers))
	uses := make(map[Layer[B]]int, len(m.layers))
	for _, n := range m.nodes {
		if _, ok := first[n.layer]; !ok {
			first[n.layer] = n
		}
		uses[n.layer]++
	}

	rows := make([]SummaryRow, 0, len(m.layers))
	for _, l := range m.layers {
		params := 0
		for _, p := range l.Parameters() {
			params += p.NumElements()
		}
		rows = append(rows, SummaryRow{
			Name:        l.Name(),
			Kind:        kind(l),
			OutputShape: first[l].shape.Clone(),
			Multiple:    uses[l] > 1,
			Params:      params,
		})
	}
	return rows
}
