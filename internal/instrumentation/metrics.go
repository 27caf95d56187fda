package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod     = "method"
	attrPath       = "path"
	attrStatus     = "status"
	attrOperation  = "operation"
	attrService    = "service"
	attrResult     = "result"
	attrTool       = "tool"
	attrEndpoint   = "endpoint"
	attrBackend    = "backend"
	attrUserDomain = "user_domain"
)

var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// Metrics records the server's OpenTelemetry metrics.
// The zero value is a valid no-op recorder.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
	toolsEnabled         metric.Int64Gauge

	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	oauthProxyRequestsTotal metric.Int64Counter
	oauthTokenRefreshTotal  metric.Int64Counter

	sessionStoreOpsTotal metric.Int64Counter
	activeSessions       metric.Int64UpDownCounter

	detailedLabels bool
}

// NewMetrics creates all instruments on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}
	var err error

	if m.httpRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}
	if m.httpRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0)); err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	if m.toolInvocationsTotal, err = meter.Int64Counter("mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}")); err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}
	if m.toolDuration, err = meter.Float64Histogram("mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}
	if m.toolsEnabled, err = meter.Int64Gauge("mcp_tools_enabled",
		metric.WithDescription("Number of MCP tools registered per Google service"),
		metric.WithUnit("{tool}")); err != nil {
		return nil, fmt.Errorf("failed to create mcp_tools_enabled gauge: %w", err)
	}

	if m.googleAPIOperationsTotal, err = meter.Int64Counter("google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}
	if m.googleAPIOperationDuration, err = meter.Float64Histogram("google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	if m.oauthProxyRequestsTotal, err = meter.Int64Counter("oauth_proxy_requests_total",
		metric.WithDescription("Total number of requests to the OAuth discovery and proxy endpoints"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("failed to create oauth_proxy_requests_total counter: %w", err)
	}
	if m.oauthTokenRefreshTotal, err = meter.Int64Counter("oauth_token_refresh_total",
		metric.WithDescription("Total number of Google token refresh attempts"),
		metric.WithUnit("{attempt}")); err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	if m.sessionStoreOpsTotal, err = meter.Int64Counter("session_store_operations_total",
		metric.WithDescription("Total number of credential and session store operations"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, fmt.Errorf("failed to create session_store_operations_total counter: %w", err)
	}
	if m.activeSessions, err = meter.Int64UpDownCounter("active_sessions",
		metric.WithDescription("Number of MCP sessions bound to a Google user"),
		metric.WithUnit("{session}")); err != nil {
		return nil, fmt.Errorf("failed to create active_sessions counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request. path should be a route pattern, not a raw URL.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records an MCP tool call. userEmail is reduced to its
// domain and only attached when detailed labels are enabled.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status, userEmail string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}
	kv := []attribute.KeyValue{
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && userEmail != "" {
		kv = append(kv, attribute.String(attrUserDomain, ExtractUserDomain(userEmail)))
	}
	attrs := metric.WithAttributes(kv...)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordEnabledTools records how many tools a service registered at startup.
func (m *Metrics) RecordEnabledTools(ctx context.Context, service string, count int) {
	if m == nil || m.toolsEnabled == nil {
		return
	}
	m.toolsEnabled.Record(ctx, int64(count), metric.WithAttributes(attribute.String(attrService, service)))
}

// RecordGoogleAPIOperation records a call to a Google API.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordOAuthProxyRequest records a request to one of the OAuth endpoints.
// endpoint is a short name such as "authorize" or "token".
func (m *Metrics) RecordOAuthProxyRequest(ctx context.Context, endpoint, result string) {
	if m == nil || m.oauthProxyRequestsTotal == nil {
		return
	}
	m.oauthProxyRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrEndpoint, endpoint),
		attribute.String(attrResult, result),
	))
}

// RecordOAuthTokenRefresh records a Google token refresh attempt.
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.oauthTokenRefreshTotal == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordSessionStoreOperation records a credential store operation.
// backend is "file", "memory" or "redis".
func (m *Metrics) RecordSessionStoreOperation(ctx context.Context, backend, operation, status string) {
	if m == nil || m.sessionStoreOpsTotal == nil {
		return
	}
	m.sessionStoreOpsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrBackend, backend),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	))
}

// IncrementActiveSessions increments the bound session count.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions decrements the bound session count.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}
