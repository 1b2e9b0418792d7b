package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/intentflow/intentflow/pkg/cdg"
	apperrors "github.com/intentflow/intentflow/pkg/errors"
)

// MongoStore keeps drafts as BSON documents, one per conversation.
// Graphs round-trip through the bson tags on the cdg types.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string // default "mongodb://localhost:27017"
	Database   string // default "intentflow"
	Collection string // default "drafts"
}

// NewMongoStore connects to MongoDB and verifies the connection with a
// ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "intentflow"
	}
	if cfg.Collection == "" {
		cfg.Collection = "drafts"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context, conversationID string) (*Draft, error) {
	var d Draft
	err := s.coll.FindOne(ctx, bson.M{"conversation_id": conversationID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.New(apperrors.ErrCodeDraftNotFound, "no draft for conversation %s", conversationID)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "load draft %s", conversationID)
	}
	return &d, nil
}

func (s *MongoStore) Save(ctx context.Context, conversationID string, g cdg.Graph) error {
	d := Draft{ConversationID: conversationID, Graph: g, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"conversation_id": conversationID},
		d,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSaveFailed, err, "save draft %s", conversationID)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, conversationID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"conversation_id": conversationID}); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "delete draft %s", conversationID)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
