// Package store persists draft graphs between editing sessions.
//
// A draft is the locally edited copy of a conversation's dependency
// graph, keyed by conversation id. Three backends implement [Store]:
//
//   - [FileStore]: JSON files under ~/.config/intentflow/drafts/, for
//     single-user CLI use
//   - [RedisStore]: shared drafts with TTL for multi-instance setups
//   - [MongoStore]: durable drafts stored as BSON documents
//
// All backends return a draft-not-found error for unknown conversation
// ids; check with errors.Is against [errors.ErrCodeDraftNotFound].
package store

import (
	"context"
	"time"

	"github.com/intentflow/intentflow/pkg/cdg"
)

// Draft is a persisted draft graph plus bookkeeping.
type Draft struct {
	ConversationID string    `json:"conversation_id" bson:"conversation_id"`
	Graph          cdg.Graph `json:"graph" bson:"graph"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface draft persistence backends implement.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the draft for a conversation, or a draft-not-found
	// error if none has been saved.
	Load(ctx context.Context, conversationID string) (*Draft, error)

	// Save stores the graph as the conversation's draft, stamping
	// UpdatedAt.
	Save(ctx context.Context, conversationID string, g cdg.Graph) error

	// Delete removes a conversation's draft. Deleting a missing draft
	// is not an error.
	Delete(ctx context.Context, conversationID string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
