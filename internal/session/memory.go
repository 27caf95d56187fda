package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/teemow/workspace-mcp/internal/google"
)

const cleanupInterval = time.Minute

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e memoryEntry[T]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is a process-local Store. Entries expire ttl after their last write.
type MemoryStore struct {
	mu          sync.RWMutex
	credentials map[string]memoryEntry[*google.Credentials]
	sessions    map[string]memoryEntry[string]
	ttl         time.Duration
	now         func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a store and starts its cleanup loop. A ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		credentials: make(map[string]memoryEntry[*google.Credentials]),
		sessions:    make(map[string]memoryEntry[string]),
		ttl:         ttl,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	if ttl > 0 {
		go s.cleanupLoop()
	}
	return s
}

func (s *MemoryStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

func (s *MemoryStore) LoadCredentials(_ context.Context, user string) (*google.Credentials, error) {
	s.mu.RLock()
	entry, ok := s.credentials[strings.ToLower(user)]
	s.mu.RUnlock()
	if !ok || entry.expired(s.now()) {
		return nil, google.ErrTokenNotFound
	}
	creds := *entry.value
	return &creds, nil
}

func (s *MemoryStore) SaveCredentials(_ context.Context, user string, creds *google.Credentials) error {
	stored := *creds
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[strings.ToLower(user)] = memoryEntry[*google.Credentials]{value: &stored, expiresAt: s.expiry()}
	return nil
}

func (s *MemoryStore) DeleteCredentials(_ context.Context, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.credentials, strings.ToLower(user))
	return nil
}

// BindSession records user as the owner of sessionID.
func (s *MemoryStore) BindSession(_ context.Context, sessionID, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memoryEntry[string]{value: strings.ToLower(user), expiresAt: s.expiry()}
	return nil
}

// UserForSession returns the owner of sessionID.
func (s *MemoryStore) UserForSession(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || entry.expired(s.now()) {
		return "", ErrSessionNotFound
	}
	return entry.value, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close stops the cleanup loop.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.credentials {
		if e.expired(now) {
			delete(s.credentials, k)
		}
	}
	for k, e := range s.sessions {
		if e.expired(now) {
			delete(s.sessions, k)
		}
	}
}
