package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/intentflow/intentflow/pkg/cdg"
)

// draftsCommand creates the drafts command with subcommands.
func (c *CLI) draftsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage locally stored conversation drafts",
		Long: `Manage the conversation drafts in the configured store.

The chat command stores each turn's merged graph as the draft for its
conversation. 'drafts show' retrieves one for offline layout and rendering,
'drafts rm' discards it.`,
	}

	cmd.AddCommand(c.draftsShowCommand())
	cmd.AddCommand(c.draftsRemoveCommand())

	return cmd
}

// draftsShowCommand creates the "drafts show" subcommand.
func (c *CLI) draftsShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show [conversation-id]",
		Short: "Print or export the stored draft for a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			drafts, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer drafts.Close(ctx)

			d, err := drafts.Load(ctx, args[0])
			if err != nil {
				return fmt.Errorf("load draft %s: %w", args[0], err)
			}

			if output == "" {
				data, err := cdg.MarshalGraph(d.Graph)
				if err != nil {
					return fmt.Errorf("encode graph: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			if err := cdg.WriteGraphFile(d.Graph, output); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}
			printSuccess("Draft exported")
			printFile(output)
			printStats(len(d.Graph.Nodes), len(d.Graph.Edges), false)
			printNewline()
			printNextStep("Render", "intentflow render "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the graph to a file instead of stdout")

	return cmd
}

// draftsRemoveCommand creates the "drafts rm" subcommand.
func (c *CLI) draftsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [conversation-id]",
		Short: "Discard the stored draft for a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			drafts, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer drafts.Close(ctx)

			if err := drafts.Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("delete draft %s: %w", args[0], err)
			}
			printSuccess("Draft removed")
			return nil
		},
	}
}
