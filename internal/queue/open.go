package queue

import (
	"context"
	"fmt"

	"attendterm/internal/store"
)

// Settings selects and locates a backend.
type Settings struct {
	Backend     string // file, sqlite, postgres, redis or memory
	Path        string
	SQLitePath  string
	DatabaseURL string
	RedisAddr   string
	RedisKey    string
}

// Open builds the configured backend. The returned func releases it and a
// health func reports whether it is reachable.
func Open(ctx context.Context, s Settings) (Backend, func() error, func(context.Context) bool, error) {
	noop := func() error { return nil }
	always := func(context.Context) bool { return true }

	switch s.Backend {
	case "", "file":
		b, err := NewFileBackend(s.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return b, noop, always, nil
	case "memory":
		return NewMemory(), noop, always, nil
	case "sqlite":
		db, err := store.NewSQLite(ctx, s.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		b, err := NewSQLBackend(ctx, db, DialectSQLite)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return b, db.Close, func(ctx context.Context) bool { return db.PingContext(ctx) == nil }, nil
	case "postgres":
		db, err := store.NewPostgres(ctx, s.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		b, err := NewSQLBackend(ctx, db, DialectPostgres)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return b, db.Close, func(ctx context.Context) bool { return db.PingContext(ctx) == nil }, nil
	case "redis":
		r, err := store.NewRedis(s.RedisAddr)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, nil, nil, err
		}
		return NewRedisBackend(r.Client, s.RedisKey), r.Close, r.Healthy, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown queue backend %q", s.Backend)
}
