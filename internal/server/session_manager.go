package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
)

const sessionIDPrefix = "mcp-session-"

// SessionIDManager issues and validates Mcp-Session-Id values for the
// streamable HTTP transport. Ids are random UUIDs, so sessions survive a
// restart as long as the binding store does.
//
// The active_sessions gauge counts the ids issued by this process that are
// neither terminated nor older than the retention.
type SessionIDManager struct {
	mu         sync.Mutex
	active     map[string]time.Time
	terminated map[string]time.Time
	retention  time.Duration
	metrics    *instrumentation.Metrics
	logger     *slog.Logger

	cleanupTicker *time.Ticker
	cleanupDone   chan struct{}
	stopOnce      sync.Once
}

// NewSessionIDManager creates a manager. Terminated ids are remembered for retention.
func NewSessionIDManager(retention time.Duration, metrics *instrumentation.Metrics, logger *slog.Logger) *SessionIDManager {
	if logger == nil {
		logger = slog.Default()
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	m := &SessionIDManager{
		active:        make(map[string]time.Time),
		terminated:    make(map[string]time.Time),
		retention:     retention,
		metrics:       metrics,
		logger:        logger,
		cleanupTicker: time.NewTicker(10 * time.Minute),
		cleanupDone:   make(chan struct{}),
	}
	go m.cleanupTerminatedSessions()
	return m
}

// Generate returns a new session id.
func (m *SessionIDManager) Generate() string {
	id := sessionIDPrefix + uuid.NewString()

	m.mu.Lock()
	m.active[id] = time.Now()
	m.mu.Unlock()

	m.metrics.IncrementActiveSessions(context.Background())
	return id
}

// Validate checks the id format and reports whether the session was terminated.
func (m *SessionIDManager) Validate(sessionID string) (isTerminated bool, err error) {
	raw, ok := strings.CutPrefix(sessionID, sessionIDPrefix)
	if !ok {
		return false, fmt.Errorf("invalid session id %q", sessionID)
	}
	if _, err := uuid.Parse(raw); err != nil {
		return false, fmt.Errorf("invalid session id: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, terminated := m.terminated[sessionID]
	return terminated, nil
}

// Terminate marks the session as ended. Clients are always allowed to terminate.
func (m *SessionIDManager) Terminate(sessionID string) (isNotAllowed bool, err error) {
	if _, err := m.Validate(sessionID); err != nil {
		return false, err
	}

	m.mu.Lock()
	_, already := m.terminated[sessionID]
	m.terminated[sessionID] = time.Now()
	_, live := m.active[sessionID]
	delete(m.active, sessionID)
	m.mu.Unlock()

	if live {
		m.metrics.DecrementActiveSessions(context.Background())
	}
	if !already {
		m.logger.Debug("session terminated", logging.Session(sessionID))
	}
	return false, nil
}

func (m *SessionIDManager) cleanupTerminatedSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.sweep(time.Now())
		case <-m.cleanupDone:
			return
		}
	}
}

// sweep forgets terminated ids and expires active ones older than the
// retention. It returns the number of terminated ids removed.
func (m *SessionIDManager) sweep(now time.Time) int {
	m.mu.Lock()
	removed := 0
	for id, at := range m.terminated {
		if now.Sub(at) > m.retention {
			delete(m.terminated, id)
			removed++
		}
	}
	expired := 0
	for id, at := range m.active {
		if now.Sub(at) > m.retention {
			delete(m.active, id)
			expired++
		}
	}
	m.mu.Unlock()

	for range expired {
		m.metrics.DecrementActiveSessions(context.Background())
	}
	if removed > 0 || expired > 0 {
		m.logger.Debug("swept sessions", "terminated", removed, "expired", expired)
	}
	return removed
}

// Stop ends the cleanup goroutine.
func (m *SessionIDManager) Stop() {
	m.stopOnce.Do(func() {
		m.cleanupTicker.Stop()
		close(m.cleanupDone)
	})
}
