package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// conversationsCommand creates the conversations command with subcommands.
func (c *CLI) conversationsCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"convs"},
		Short:   "List conversations on the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := requireSession(cmd); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newBackendClient(ctx, cfg, refresh)
			if err != nil {
				return err
			}

			conversations, err := client.ListConversations(ctx)
			if err != nil {
				return fmt.Errorf("list conversations: %w", err)
			}
			if len(conversations) == 0 {
				printInfo("No conversations yet")
				printNextStep("Create one", "intentflow conversations new \"Tokyo in May\"")
				return nil
			}

			for _, conv := range conversations {
				title := conv.Title
				if title == "" {
					title = "(untitled)"
				}
				printKeyValue(conv.ConversationID, title)
				if conv.CreatedAt != "" {
					printDetail("created %s", formatRelativeTime(conv.CreatedAt))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the local response cache")
	cmd.AddCommand(c.conversationsNewCommand())

	return cmd
}

// conversationsNewCommand creates the "conversations new" subcommand.
func (c *CLI) conversationsNewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new [title]",
		Short: "Create a new conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := requireSession(cmd); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newBackendClient(ctx, cfg, false)
			if err != nil {
				return err
			}

			conv, err := client.CreateConversation(ctx, args[0])
			if err != nil {
				return fmt.Errorf("create conversation: %w", err)
			}

			printSuccess("Created %s", conv.Title)
			printDetail("ID: %s", conv.ConversationID)
			printNewline()
			printNextStep("Chat", fmt.Sprintf("intentflow chat %s -m \"...\"", conv.ConversationID))
			return nil
		},
	}
}
