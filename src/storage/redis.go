package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL    = 60 * time.Minute
	sessionPrefix = "session:"
)

// RedisStore implements Store on Redis. Every read refreshes the key's TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore parses redisURL, connects and pings
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	store := NewRedisStoreFromClient(redis.NewClient(opts), ttl)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return store, nil
}

// NewRedisStoreFromClient wraps an existing client. A non-positive ttl uses DefaultTTL.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// key generates a Redis key for the given id
func (r *RedisStore) key(id string) string {
	return sessionPrefix + id
}

func (r *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session data: %w", err)
	}

	// Refresh TTL
	if err := r.client.Expire(ctx, r.key(id), r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to extend TTL: %w", err)
	}
	return data, nil
}

func (r *RedisStore) Put(ctx context.Context, id string, value []byte) error {
	if err := r.client.Set(ctx, r.key(id), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session data: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping tests Redis connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
