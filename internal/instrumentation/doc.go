// Package instrumentation wires OpenTelemetry metrics and tracing for the
// workspace MCP server and provides the audit log for tool invocations.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: by method, route and status
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: by tool and status
//   - mcp_tools_enabled: tools registered per Google service at startup
//   - google_api_operations_total, google_api_operation_duration_seconds
//   - oauth_proxy_requests_total: discovery, authorize, token and register calls
//   - oauth_token_refresh_total
//   - session_store_operations_total: by backend (file, memory, redis)
//   - active_sessions
//
// Metrics are exported through the default Prometheus registry unless
// METRICS_EXPORTER selects otlp or stdout. Tracing is off unless
// TRACING_EXPORTER is set.
//
// # Configuration
//
// ConfigFromEnv reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER,
// TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_TRACES_SAMPLER_ARG,
// OTEL_SERVICE_NAME, METRICS_DETAILED_LABELS, AUDIT_LOGGING_ENABLED and
// AUDIT_LOGGING_INCLUDE_PII.
//
//	cfg, err := instrumentation.ConfigFromEnv()
//	if err != nil {
//		return err
//	}
//	cfg.ServiceVersion = version
//	provider, err := instrumentation.NewProvider(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "search_gmail_messages", instrumentation.StatusSuccess, "", time.Since(start))
package instrumentation
