package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/intentflow/intentflow/pkg/backend"
	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/draft"
	apperrors "github.com/intentflow/intentflow/pkg/errors"
	"github.com/intentflow/intentflow/pkg/store"
)

// chatCommand creates the chat command for streaming an assistant turn.
func (c *CLI) chatCommand() *cobra.Command {
	var (
		message string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "chat [conversation-id]",
		Short: "Stream an assistant turn for a conversation",
		Long: `Stream an assistant turn for a conversation.

Sends the message to the backend and prints the assistant's reply token by
token as it streams. When the turn completes, the updated conversation
graph is stored as the local draft for the conversation so it can be
rendered or edited offline.

Without a conversation id, an interactive picker lists your conversations.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := requireSession(cmd); err != nil {
				return err
			}
			if message == "" {
				return fmt.Errorf("nothing to send, pass the message with -m")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newBackendClient(ctx, cfg, refresh)
			if err != nil {
				return err
			}

			conversationID := ""
			if len(args) == 1 {
				conversationID = args[0]
			} else {
				conversationID, err = pickConversation(ctx, client)
				if err != nil {
					return err
				}
			}

			return c.runChat(ctx, cfg, client, conversationID, message)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "message to send")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the local response cache")

	return cmd
}

// pickConversation shows the interactive conversation picker.
func pickConversation(ctx context.Context, client *backend.Client) (string, error) {
	conversations, err := client.ListConversations(ctx)
	if err != nil {
		return "", fmt.Errorf("list conversations: %w", err)
	}
	if len(conversations) == 0 {
		return "", fmt.Errorf("no conversations yet, run 'intentflow conversations new <title>' first")
	}

	model, err := tea.NewProgram(NewConversationListModel(conversations)).Run()
	if err != nil {
		return "", fmt.Errorf("run picker: %w", err)
	}
	list, ok := model.(ConversationListModel)
	if !ok || list.Selected == nil {
		return "", fmt.Errorf("no conversation selected")
	}
	return list.Selected.ConversationID, nil
}

// runChat streams the turn and persists the resulting graph as the local draft.
func (c *CLI) runChat(ctx context.Context, cfg Config, client *backend.Client, conversationID, message string) error {
	fmt.Println(StyleDim.Render("you: ") + message)
	fmt.Print(StyleHighlight.Render("assistant: "))

	tick := newProgress(c.Logger)
	resp, err := client.StreamTurn(ctx, conversationID, message, backend.StreamHandlers{
		OnStart: func(data backend.StartData) {
			c.Logger.Debug("turn started", "conversation", data.ConversationID, "graph_version", data.GraphVersion)
		},
		OnToken: func(token string) {
			fmt.Print(token)
		},
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("stream turn: %w", err)
	}
	tick.done(fmt.Sprintf("Turn complete, graph v%d", resp.Graph.Version))

	drafts, err := newStore(ctx, cfg)
	if err != nil {
		printWarning("Draft not stored: %v", err)
		return nil
	}
	defer drafts.Close(ctx)

	prior, err := drafts.Load(ctx, conversationID)
	if err != nil && !apperrors.Is(err, apperrors.ErrCodeDraftNotFound) {
		printWarning("Prior draft unreadable, starting fresh: %v", err)
		prior = nil
	}
	g := mergeTurnGraph(prior, resp.Graph)
	if err := drafts.Save(ctx, conversationID, g); err != nil {
		printWarning("Draft not stored: %v", err)
		return nil
	}

	printNewline()
	printStats(len(g.Nodes), len(g.Edges), false)
	return nil
}

// mergeTurnGraph folds a turn's fresh graph into the stored draft. The
// snapshot is normalized and merged with the prior draft's pinned positions
// so a backend update never discards user-arranged layout.
func mergeTurnGraph(prior *store.Draft, fresh cdg.Graph) cdg.Graph {
	if prior == nil {
		return cdg.NormalizeGraph(fresh)
	}
	engine := draft.NewEngine(prior.Graph)
	engine.ApplySnapshot(fresh)
	return engine.Graph()
}
