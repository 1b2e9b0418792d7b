package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/intentflow/intentflow/pkg/cdg"
)

// normalizeCommand creates the normalize command.
func (c *CLI) normalizeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "normalize [payload.json]",
		Short: "Coerce an untrusted graph payload into a well-formed graph",
		Long: `Coerce an untrusted graph payload into a well-formed conversation graph.

The normalize command accepts whatever the assistant emitted for a graph,
including almost-JSON with single quotes or trailing commas, and produces a
graph where every node and edge has an id, a known type, and clamped numeric
fields. Edges referencing missing nodes are dropped. Use "-" to read from
stdin and write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNormalize(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json)")

	return cmd
}

// runNormalize reads the payload, normalizes it, and writes the graph.
func (c *CLI) runNormalize(input, output string) error {
	data, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read payload %s: %w", input, err)
	}

	tick := newProgress(c.Logger)
	g, err := cdg.Decode(data)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	tick.done(fmt.Sprintf("Normalized %d nodes, %d edges", len(g.Nodes), len(g.Edges)))

	if input == "-" && output == "" {
		out, err := cdg.MarshalGraph(g)
		if err != nil {
			return fmt.Errorf("encode graph: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".graph.json"
	}

	if err := cdg.WriteGraphFile(g, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Normalize complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Edges), false)
	printNewline()
	printNextStep("Layout", "intentflow layout "+outputPath)

	return nil
}

// readInput reads a file argument, treating "-" as stdin.
func readInput(input string) ([]byte, error) {
	if input == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(input)
}
