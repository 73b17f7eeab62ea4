package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the connection behind the list-backed offline queue. The list
// may sit on a broker shared by several terminals, so each client names
// itself and callers scope keys per terminal.
type Redis struct {
	Client *redis.Client
	addr   string
}

// NewRedis builds a client for the offline queue. Timeouts are short because
// Enqueue and the sync pass run on the single terminal loop.
func NewRedis(addr string) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		ClientName:   "attendterm-queue",
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
		MaxRetries:   1,
		PoolSize:     2,
	})
	return &Redis{Client: client, addr: addr}, nil
}

// Ping reports why the queue broker is unreachable.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis queue not configured")
	}
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis queue %s: %w", r.addr, err)
	}
	return nil
}

// Healthy is Ping as a bool for the diagnostics probe.
func (r *Redis) Healthy(ctx context.Context) bool {
	return r.Ping(ctx) == nil
}

func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
