package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/intentflow/intentflow/pkg/cdg"
	apperrors "github.com/intentflow/intentflow/pkg/errors"
)

// RedisStore keeps drafts in Redis with an optional TTL. It suits
// deployments where several processes edit against the same backend.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	Addr     string        // host:port, default "localhost:6379"
	Password string        // optional
	DB       int           // redis database number
	Prefix   string        // key prefix, default "intentflow:draft:"
	TTL      time.Duration // 0 keeps drafts forever
}

// NewRedisStore connects to Redis and verifies the connection with a
// ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "intentflow:draft:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "connect redis %s", cfg.Addr)
	}
	return &RedisStore{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}, nil
}

func (s *RedisStore) key(conversationID string) string {
	return s.prefix + conversationID
}

func (s *RedisStore) Load(ctx context.Context, conversationID string) (*Draft, error) {
	data, err := s.client.Get(ctx, s.key(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.New(apperrors.ErrCodeDraftNotFound, "no draft for conversation %s", conversationID)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "load draft %s", conversationID)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parse draft %s", conversationID)
	}
	return &d, nil
}

func (s *RedisStore) Save(ctx context.Context, conversationID string, g cdg.Graph) error {
	d := Draft{ConversationID: conversationID, Graph: g, UpdatedAt: time.Now().UTC()}
	data, err := json.Marshal(d)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "marshal draft")
	}
	if err := s.client.Set(ctx, s.key(conversationID), data, s.ttl).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSaveFailed, err, "save draft %s", conversationID)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, s.key(conversationID)).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "delete draft %s", conversationID)
	}
	return nil
}

func (s *RedisStore) Close(ctx context.Context) error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
