package backend

import "github.com/intentflow/intentflow/pkg/cdg"

// LoginResponse is the session handed back by the auth endpoint.
type LoginResponse struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	SessionToken string `json:"sessionToken"`
}

// ConversationSummary is one row of the conversation listing.
type ConversationSummary struct {
	ConversationID string `json:"conversationId"`
	Title          string `json:"title"`
	CreatedAt      string `json:"createdAt,omitempty"`
	GraphVersion   int64  `json:"graphVersion,omitempty"`
}

// ConversationCreateResponse is returned when a conversation is opened.
// The graph is the collaborator's initial (usually empty) dependency graph.
type ConversationCreateResponse struct {
	ConversationID string    `json:"conversationId"`
	Title          string    `json:"title"`
	SystemPrompt   string    `json:"systemPrompt"`
	Graph          cdg.Graph `json:"graph"`
}

// ConversationDetail is the full state of one conversation, including the
// collaborator's current graph snapshot.
type ConversationDetail struct {
	ConversationID string    `json:"conversationId"`
	Title          string    `json:"title"`
	SystemPrompt   string    `json:"systemPrompt,omitempty"`
	Graph          cdg.Graph `json:"graph"`
}

// TurnItem is one entry of the turn history.
type TurnItem struct {
	ID            string `json:"id"`
	CreatedAt     string `json:"createdAt"`
	UserText      string `json:"userText"`
	AssistantText string `json:"assistantText"`
	GraphVersion  int64  `json:"graphVersion"`
}

// TurnResponse is the terminal payload of a turn: the assistant's full
// text plus the fresh graph snapshot the collaborator derived from it.
// GraphPatch is collaborator-shaped and passed through untouched.
type TurnResponse struct {
	AssistantText string    `json:"assistantText"`
	GraphPatch    any       `json:"graphPatch"`
	Graph         cdg.Graph `json:"graph"`
}

// SaveResult is the response to a graph save. The returned graph is the
// collaborator's canonical copy; callers must re-normalize it before use.
type SaveResult struct {
	Graph  cdg.Graph `json:"graph"`
	Advice string    `json:"advice,omitempty"`
}

// StartData opens a turn stream: which conversation is answering and at
// what graph version.
type StartData struct {
	ConversationID string `json:"conversationId"`
	GraphVersion   int64  `json:"graphVersion"`
}

// PingData is a stream keepalive. T is a collaborator-side timestamp in
// milliseconds.
type PingData struct {
	T int64 `json:"t"`
}

// StreamError is the payload of an error event on a turn stream.
type StreamError struct {
	Message string `json:"message"`
}
