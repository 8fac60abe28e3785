package notify

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps values in Redis under a common key prefix.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStorage wraps an existing client. prefix is prepended to every key.
func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, prefix string) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return NewRedisStorage(client, prefix), nil
}

// Load implements Storage.
func (r *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save implements Storage.
func (r *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, r.prefix+key, data, 0).Err()
}

// Close releases the underlying client.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
