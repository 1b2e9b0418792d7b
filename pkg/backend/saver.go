package backend

import (
	"context"

	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/draft"
)

// GraphSaver binds a Client to one conversation so it satisfies
// [draft.Saver]. The draft engine plugs it into its save and autosave
// paths.
type GraphSaver struct {
	Client         *Client
	ConversationID string
}

// NewGraphSaver returns a saver for the given conversation.
func NewGraphSaver(c *Client, conversationID string) *GraphSaver {
	return &GraphSaver{Client: c, ConversationID: conversationID}
}

// SaveGraph implements [draft.Saver] by uploading the draft and handing
// the collaborator's canonical snapshot back to the engine.
func (s *GraphSaver) SaveGraph(ctx context.Context, g cdg.Graph, opts draft.SaveOptions) (*cdg.Graph, error) {
	res, err := s.Client.SaveGraph(ctx, s.ConversationID, g, SaveOptions{
		RequestAdvice: opts.RequestAdvice,
		AdvicePrompt:  opts.AdvicePrompt,
	})
	if err != nil {
		return nil, err
	}
	return &res.Graph, nil
}
