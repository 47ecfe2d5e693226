package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/born-ml/progan/internal/backend/cpu"
	"github.com/born-ml/progan/internal/graph"
	"github.com/born-ml/progan/internal/tensor"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6A737D"))
)

func newSummaryCmd(c *cli) *cobra.Command {
	var (
		stage      int
		composites bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the layers of every network stage",
		Long: `Builds the generator and discriminator (and with --composite the
composite models) and prints one table per model: layer name, kind,
output shape and parameter count. Layers applied more than once show
"multiple" as their output shape.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nets, err := build(c.cfg, cpu.New(), c.logger)
			if err != nil {
				return err
			}
			idx, err := stageRange(stage, len(nets.gens))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, i := range idx {
				lists := [][]*graph.Model[*cpu.CPUBackend]{variants(nets.gens[i]), variants(nets.discs[i])}
				if composites {
					lists = append(lists, variants(nets.composites[i]))
				}
				for _, models := range lists {
					for _, m := range models {
						renderSummary(out, m)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&stage, "stage", "s", -1, "only this stage (default all)")
	cmd.Flags().BoolVar(&composites, "composite", false, "include the composite models")
	return cmd
}

func renderSummary[B tensor.Backend](w io.Writer, m *graph.Model[B]) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Layer", "Kind", "Output Shape", "Params").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range m.Summary() {
		shape := formatShape(r.OutputShape)
		if r.Multiple {
			shape = "multiple"
		}
		t.Row(r.Name, r.Kind, shape, strconv.Itoa(r.Params))
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s  %v -> %v", m.Name(), formatShape(m.InputShape()), formatShape(m.OutputShape()))))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Total params: %d  Trainable params: %d",
		m.CountParams(), m.CountTrainableParams())))
	fmt.Fprintln(w)
}

// formatShape renders a per-sample shape with a leading batch dimension.
func formatShape(s tensor.Shape) string {
	parts := make([]string, 0, len(s)+1)
	parts = append(parts, "N")
	for _, d := range s {
		parts = append(parts, strconv.Itoa(d))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
