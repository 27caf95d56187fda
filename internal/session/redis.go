package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teemow/workspace-mcp/internal/google"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Client *redis.Client

	// KeyPrefix is prepended to every key. Default: "workspace-mcp:"
	KeyPrefix string

	// TTL is applied to every write. Zero keeps keys until deleted.
	TTL time.Duration
}

// RedisStore is a Store shared by all replicas through Redis.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "workspace-mcp:"
	}
	return &RedisStore{client: cfg.Client, keyPrefix: cfg.KeyPrefix, ttl: cfg.TTL}, nil
}

func (s *RedisStore) credentialsKey(user string) string {
	return s.keyPrefix + "credentials:" + strings.ToLower(user)
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return s.keyPrefix + "session:" + sessionID
}

func (s *RedisStore) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	now := time.Now()
	env := envelope{Data: data, CreatedAt: now}
	if s.ttl > 0 {
		expiresAt := now.Add(s.ttl)
		env.ExpiresAt = &expiresAt
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// get decodes key into out. It reports false when the key is missing or expired.
func (s *RedisStore) get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.ExpiresAt != nil && time.Now().After(*env.ExpiresAt) {
		s.client.Del(ctx, key)
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return true, nil
}

func (s *RedisStore) LoadCredentials(ctx context.Context, user string) (*google.Credentials, error) {
	var creds google.Credentials
	found, err := s.get(ctx, s.credentialsKey(user), &creds)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, google.ErrTokenNotFound
	}
	return &creds, nil
}

func (s *RedisStore) SaveCredentials(ctx context.Context, user string, creds *google.Credentials) error {
	return s.set(ctx, s.credentialsKey(user), creds)
}

func (s *RedisStore) DeleteCredentials(ctx context.Context, user string) error {
	if err := s.client.Del(ctx, s.credentialsKey(user)).Err(); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

func (s *RedisStore) BindSession(ctx context.Context, sessionID, user string) error {
	return s.set(ctx, s.sessionKey(sessionID), strings.ToLower(user))
}

func (s *RedisStore) UserForSession(ctx context.Context, sessionID string) (string, error) {
	var user string
	found, err := s.get(ctx, s.sessionKey(sessionID), &user)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrSessionNotFound
	}
	return user, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
