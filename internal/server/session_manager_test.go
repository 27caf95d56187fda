package server

import (
	"context"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
)

// manualMetrics returns metrics backed by a reader the test collects from.
func manualMetrics(t *testing.T) (*instrumentation.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return metrics, reader
}

func activeSessions(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "active_sessions" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("active_sessions data is %T", m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestSessionIDManager(t *testing.T) {
	m := NewSessionIDManager(time.Hour, nil, nil)
	defer m.Stop()

	id := m.Generate()
	if !strings.HasPrefix(id, sessionIDPrefix) {
		t.Fatalf("Generate() = %q, want prefix %q", id, sessionIDPrefix)
	}
	if other := m.Generate(); other == id {
		t.Error("Generate() returned the same id twice")
	}

	terminated, err := m.Validate(id)
	if err != nil || terminated {
		t.Fatalf("Validate() = %v, %v; want false, nil", terminated, err)
	}

	notAllowed, err := m.Terminate(id)
	if err != nil || notAllowed {
		t.Fatalf("Terminate() = %v, %v; want false, nil", notAllowed, err)
	}
	terminated, err = m.Validate(id)
	if err != nil || !terminated {
		t.Errorf("Validate() after Terminate = %v, %v; want true, nil", terminated, err)
	}

	if _, err := m.Terminate(id); err != nil {
		t.Errorf("second Terminate() error = %v", err)
	}
}

func TestSessionIDManager_InvalidIDs(t *testing.T) {
	m := NewSessionIDManager(time.Hour, nil, nil)
	defer m.Stop()

	for _, id := range []string{"", "abc", "mcp-session-", "mcp-session-not-a-uuid"} {
		if _, err := m.Validate(id); err == nil {
			t.Errorf("Validate(%q) expected error", id)
		}
		if _, err := m.Terminate(id); err == nil {
			t.Errorf("Terminate(%q) expected error", id)
		}
	}
}

func TestSessionIDManager_Sweep(t *testing.T) {
	m := NewSessionIDManager(time.Minute, nil, nil)
	defer m.Stop()

	id := m.Generate()
	if _, err := m.Terminate(id); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}

	if removed := m.sweep(time.Now()); removed != 0 {
		t.Errorf("sweep removed %d fresh entries", removed)
	}
	if removed := m.sweep(time.Now().Add(2 * time.Minute)); removed != 1 {
		t.Errorf("sweep removed %d entries, want 1", removed)
	}
	if terminated, _ := m.Validate(id); terminated {
		t.Error("forgotten session should no longer be reported as terminated")
	}
}

func TestSessionIDManager_StopIsIdempotent(t *testing.T) {
	m := NewSessionIDManager(0, nil, nil)
	m.Stop()
	m.Stop()
}

func TestSessionIDManager_ActiveSessionsGauge(t *testing.T) {
	metrics, reader := manualMetrics(t)
	m := NewSessionIDManager(time.Minute, metrics, nil)
	defer m.Stop()

	first := m.Generate()
	second := m.Generate()
	if got := activeSessions(t, reader); got != 2 {
		t.Fatalf("active_sessions after two Generate = %d, want 2", got)
	}

	if _, err := m.Terminate(first); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}
	if _, err := m.Terminate(first); err != nil {
		t.Fatalf("second Terminate() error = %v", err)
	}
	if got := activeSessions(t, reader); got != 1 {
		t.Errorf("active_sessions after terminating one twice = %d, want 1", got)
	}

	// An id issued before a restart was never counted here.
	if _, err := m.Terminate(sessionIDPrefix + "6f1c9a4e-2b8d-4c3a-9e57-0d2f6b1a8c44"); err != nil {
		t.Fatalf("Terminate() of foreign id error = %v", err)
	}
	if got := activeSessions(t, reader); got != 1 {
		t.Errorf("active_sessions after terminating an unknown id = %d, want 1", got)
	}

	m.sweep(time.Now().Add(2 * time.Minute))
	if got := activeSessions(t, reader); got != 0 {
		t.Errorf("active_sessions after expiry = %d, want 0", got)
	}
	if _, err := m.Terminate(second); err != nil {
		t.Fatalf("Terminate() of expired id error = %v", err)
	}
	if got := activeSessions(t, reader); got != 0 {
		t.Errorf("active_sessions never goes negative, got %d", got)
	}
}
