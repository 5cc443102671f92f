package subcache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "subscription:lastknown:"

type redisStore struct {
	client *redis.Client
	prefix string
}

// RedisOption configures the redis-backed store.
type RedisOption func(*redisStore)

// WithKeyPrefix overrides the cache key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	if prefix == "" {
		panic("subcache: key prefix cannot be empty")
	}
	return func(s *redisStore) { s.prefix = prefix }
}

// NewRedisStore returns a Store backed by redis. Entries carry no TTL:
// staleness is evaluated by the caller from LastCheckedAt, and an old
// last-known state is still more useful offline than no state at all.
func NewRedisStore(client *redis.Client, opts ...RedisOption) Store {
	if client == nil {
		panic("subcache: redis client is required")
	}
	s := &redisStore{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *redisStore) key(userID uuid.UUID) string {
	return s.prefix + userID.String()
}

func (s *redisStore) Load(ctx context.Context, userID uuid.UUID) (*CachedState, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadState, err)
	}

	var state CachedState
	if err := json.Unmarshal(raw, &state); err != nil {
		// A corrupt blob surfaces as a load failure; callers fall back
		// the same way they do for an unreachable cache.
		return nil, errors.Join(ErrFailedToLoadState, err)
	}
	return &state, nil
}

func (s *redisStore) Save(ctx context.Context, userID uuid.UUID, state *CachedState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return errors.Join(ErrFailedToSaveState, err)
	}
	if err := s.client.Set(ctx, s.key(userID), raw, 0).Err(); err != nil {
		return errors.Join(ErrFailedToSaveState, err)
	}
	return nil
}
