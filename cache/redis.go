package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a Cache backed by a Redis server.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to addr. Keys are stored under prefix.
func NewRedis(addr, password string, db int, prefix string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{client: client, prefix: prefix}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return newError(err, "ping")
	}
	return nil
}

// Close closes the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, newError(err, "get "+key)
	}
	if err := decode(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		return newError(err, "set "+key)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return newError(err, "delete "+key)
	}
	return nil
}
