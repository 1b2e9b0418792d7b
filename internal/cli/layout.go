package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/layout"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		pinsPath string
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute node positions for a conversation graph",
		Long: `Compute node positions for a conversation graph.

The layout command takes a graph.json file (produced by 'normalize') and
computes a deterministic left-to-right layout: the goal node anchors the
diagram, semantic slots claim fixed lanes, and remaining nodes pack into
columns by graph distance. Pinned positions always win: positions saved
inside the graph itself are honored, and --pins supplies more from a JSON
object of node id to {x, y} (file entries take precedence).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(args[0], pinsPath, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&pinsPath, "pins", "", "JSON file with pinned positions")

	return cmd
}

// runLayout loads the graph, computes positions, and writes output.
func (c *CLI) runLayout(input, pinsPath, output string) error {
	g, err := cdg.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	pins, err := collectPins(g, pinsPath)
	if err != nil {
		return err
	}

	tick := newProgress(c.Logger)
	pos := layout.Compute(g, pins)
	tick.done(fmt.Sprintf("Placed %d nodes", len(pos)))

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	data, err := json.MarshalIndent(pos, "", "  ")
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Edges), false)
	printNewline()
	printNextStep("Render", "intentflow render "+input+" --pins "+outputPath)

	return nil
}

// collectPins merges the pins persisted inside the graph with an optional
// pins file. File entries take precedence.
func collectPins(g cdg.Graph, pinsPath string) (map[string]layout.Point, error) {
	pins := layout.PinsFromGraph(g)
	filePins, err := readPins(pinsPath)
	if err != nil {
		return nil, err
	}
	for id, p := range filePins {
		pins[id] = p
	}
	return pins, nil
}

// readPins loads a pinned-position file. An empty path yields no pins.
func readPins(path string) (map[string]layout.Point, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pins %s: %w", path, err)
	}
	var pins map[string]layout.Point
	if err := json.Unmarshal(data, &pins); err != nil {
		return nil, fmt.Errorf("parse pins %s: %w", path, err)
	}
	return pins, nil
}
