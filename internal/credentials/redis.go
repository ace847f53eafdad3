package credentials

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the refresh token when no key is configured
const DefaultRedisKey = "oura:refresh_token"

// RedisStore mirrors the refresh token into a Redis key without expiry
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisStore parses a redis:// or rediss:// URL and creates a store
func NewRedisStore(redisURL, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), key), nil
}

func NewRedisStoreWithClient(client redis.Cmdable, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Name() string {
	return "redis"
}

func (r *RedisStore) Key() string {
	return r.key
}

func (r *RedisStore) Save(ctx context.Context, tokens *Tokens) error {
	if err := r.client.Set(ctx, r.key, tokens.RefreshToken, 0).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token in redis: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool when the store owns it
func (r *RedisStore) Close() error {
	if c, ok := r.client.(*redis.Client); ok {
		return c.Close()
	}
	return nil
}
