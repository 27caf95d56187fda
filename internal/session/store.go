package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teemow/workspace-mcp/internal/config"
	"github.com/teemow/workspace-mcp/internal/google"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrSessionNotFound is returned when a session id has no bound user.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps credentials per user and the user bound to each MCP session.
type Store interface {
	google.CredentialStore

	BindSession(ctx context.Context, sessionID, user string) error
	UserForSession(ctx context.Context, sessionID string) (string, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// New creates the store selected by cfg.Store.
func New(ctx context.Context, cfg config.SessionConfig) (Store, error) {
	switch cfg.Store {
	case BackendMemory, "":
		return NewMemoryStore(cfg.TTL), nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisStore(RedisConfig{
			Client:    client,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       cfg.TTL,
		})

	default:
		return nil, fmt.Errorf("unsupported session store %q, must be memory or redis", cfg.Store)
	}
}
