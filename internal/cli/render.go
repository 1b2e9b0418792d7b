package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/layout"
	"github.com/intentflow/intentflow/pkg/render"
)

// Output formats supported by the render command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		formats  string
		pinsPath string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a conversation graph as DOT, SVG, or PNG",
		Long: `Render a conversation graph as DOT, SVG, or PNG.

The render command computes the layout (honoring --pins) and emits graphviz
output with each node fixed at its computed position, so the rendered
diagram matches what the editor shows. Use --detailed to include node type,
status, and confidence in labels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], pinsPath, output, parseFormats(formats), detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().StringVarP(&formats, "format", "f", formatSVG, "comma-separated formats: dot, svg, png")
	cmd.Flags().StringVar(&pinsPath, "pins", "", "JSON file with pinned positions")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include type, status, and confidence in labels")

	return cmd
}

// runRender loads the graph, computes positions, and writes each requested format.
func (c *CLI) runRender(ctx context.Context, input, pinsPath, output string, formats []string, detailed bool) error {
	g, err := cdg.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	pins, err := collectPins(g, pinsPath)
	if err != nil {
		return err
	}

	pos := layout.Compute(g, pins)
	dot := render.ToDOT(g, pos, render.Options{Detailed: detailed})

	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	var outputs []string
	for _, format := range formats {
		format = strings.TrimSpace(format)
		data, err := renderAs(ctx, dot, format)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render %s: %w", format, err)
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0644); err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("write output %s: %w", path, err)
		}
		outputs = append(outputs, path)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Render complete")
	for _, path := range outputs {
		printFile(path)
	}
	printStats(len(g.Nodes), len(g.Edges), false)

	return nil
}

// renderAs produces one output format from a DOT document.
func renderAs(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return render.SVG(ctx, dot)
	case formatPNG:
		return render.PNG(ctx, dot)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}
