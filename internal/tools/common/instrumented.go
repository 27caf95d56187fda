package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with a span, metrics and an
// audit record for the Google service and operation it performs.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandler("list_tasks", "tasks", instrumentation.OperationList, sc, handler))
func InstrumentedToolHandler(
	toolName string,
	service string,
	operation string,
	sc *server.ServerContext,
	handler mcpserver.ToolHandlerFunc,
) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		account := AccountFromArgs(ctx, request.GetArguments())

		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			attribute.String(instrumentation.SpanAttrService, service),
			attribute.String(instrumentation.SpanAttrOperation, operation),
		)
		defer span.End()

		invocation := instrumentation.NewToolInvocation(toolName).
			WithUser(account).
			WithService(service, operation).
			WithAuthMode(string(sc.AuthMode())).
			WithSpanContext(ctx)

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		failure := err
		if failure == nil && result != nil && result.IsError {
			failure = errors.New(resultText(result))
		}
		invocation.Complete(failure == nil, failure)

		if failure != nil {
			instrumentation.SetSpanError(span, failure)
		} else {
			instrumentation.SetSpanSuccess(span)
		}

		metrics := sc.Metrics()
		metrics.RecordToolInvocation(ctx, toolName, invocation.Status(), account, duration)
		metrics.RecordGoogleAPIOperation(ctx, service, operation, invocation.Status(), duration)
		sc.AuditLogger().LogToolInvocation(ctx, invocation)

		return result, err
	}
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("tool returned an error with %d content items", len(result.Content))
	}
	return strings.Join(parts, "\n")
}
