package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/config"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379", DB: 3})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.FlushDB(context.Background()) })
	return client
}

func TestRedisStore(t *testing.T) {
	s, err := NewRedisStore(RedisConfig{Client: redisClient(t), TTL: time.Minute})
	require.NoError(t, err)
	testStore(t, s)
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	client := redisClient(t)
	s, err := NewRedisStore(RedisConfig{Client: client, KeyPrefix: "test:"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.BindSession(ctx, "abc", "jane@example.com"))

	exists, err := client.Exists(ctx, "test:session:abc").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestNewRedisStore_RequiresClient(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, config.SessionConfig{Store: BackendMemory, TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	_, err = New(ctx, config.SessionConfig{Store: "etcd"})
	assert.Error(t, err)

	_, err = New(ctx, config.SessionConfig{Store: BackendRedis, RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisStore_PingUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	s, err := NewRedisStore(RedisConfig{Client: client})
	require.NoError(t, err)
	defer s.Close()

	err = s.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
