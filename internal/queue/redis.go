package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores lines in a Redis list, oldest first.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend builds a list-backed queue under key.
func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	if key == "" {
		key = "attendterm:offline"
	}
	return &RedisBackend{client: client, key: key}
}

// Append pushes the line to the tail of the list.
func (b *RedisBackend) Append(ctx context.Context, line string) error {
	return b.client.RPush(ctx, b.key, line).Err()
}

// Lines reads the whole list.
func (b *RedisBackend) Lines(ctx context.Context) ([]string, error) {
	lines, err := b.client.LRange(ctx, b.key, 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return lines, err
}

// Take reads the list and commit trims exactly that many entries from the
// head. RPush only grows the tail, so later appends survive the trim.
func (b *RedisBackend) Take(ctx context.Context) ([]string, func(context.Context) error, error) {
	lines, err := b.Lines(ctx)
	if err != nil {
		return nil, nil, err
	}
	n := int64(len(lines))
	commit := func(ctx context.Context) error {
		if n == 0 {
			return nil
		}
		return b.client.LTrim(ctx, b.key, n, -1).Err()
	}
	return lines, commit, nil
}
