package server

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
)

func newProvider(t *testing.T, enabled bool, exporter string) *instrumentation.Provider {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:     "workspace-mcp-test",
		ServiceVersion:  "test",
		Enabled:         enabled,
		MetricsExporter: exporter,
		TracingExporter: instrumentation.ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func TestNewMetricsServer_Validation(t *testing.T) {
	tests := []struct {
		name     string
		provider func(t *testing.T) *instrumentation.Provider
		wantErr  string
	}{
		{
			name:     "no provider",
			provider: func(*testing.T) *instrumentation.Provider { return nil },
			wantErr:  "instrumentation provider is required",
		},
		{
			name:     "instrumentation disabled",
			provider: func(t *testing.T) *instrumentation.Provider { return newProvider(t, false, "") },
			wantErr:  "instrumentation provider is not enabled",
		},
		{
			name: "stdout exporter",
			provider: func(t *testing.T) *instrumentation.Provider {
				return newProvider(t, true, instrumentation.ExporterStdout)
			},
			wantErr: "metrics exporter is not prometheus",
		},
		{
			name: "prometheus exporter",
			provider: func(t *testing.T) *instrumentation.Provider {
				return newProvider(t, true, instrumentation.ExporterPrometheus)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: tt.provider(t)})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultMetricsAddr, s.Addr())
			assert.Empty(t, s.ListenAddr(), "nothing is bound before Start")
		})
	}
}

func TestMetricsServer_ServesMetricsAndHealth(t *testing.T) {
	provider := newProvider(t, true, instrumentation.ExporterPrometheus)
	provider.Metrics().RecordToolInvocation(context.Background(), "search_gmail_messages", instrumentation.StatusSuccess, "", 10*time.Millisecond)

	s, err := NewMetricsServer(MetricsServerConfig{Addr: "127.0.0.1:0", InstrumentationProvider: provider})
	require.NoError(t, err)

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- s.StartWithReadySignal(ready) }()
	<-ready
	require.NotEmpty(t, s.ListenAddr())

	resp, err := http.Get("http://" + s.ListenAddr() + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "search_gmail_messages")

	resp, err = http.Get("http://" + s.ListenAddr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("metrics server still running after Shutdown")
	}
}

func TestMetricsServer_ListenFailure(t *testing.T) {
	provider := newProvider(t, true, instrumentation.ExporterPrometheus)
	s, err := NewMetricsServer(MetricsServerConfig{Addr: "127.0.0.1:-1", InstrumentationProvider: provider})
	require.NoError(t, err)

	ready := make(chan struct{})
	err = s.StartWithReadySignal(ready)
	require.Error(t, err)
	_, open := <-ready
	assert.False(t, open, "ready is closed even when listening fails")

	// Never started, so there is nothing to stop.
	assert.NoError(t, s.Shutdown(context.Background()))
}
