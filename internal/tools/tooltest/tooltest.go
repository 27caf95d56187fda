// Package tooltest has helpers for testing tool modules against fake Google APIs.
package tooltest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/server"
)

// User is the account AuthedContext authenticates as.
const User = "jane@example.com"

// Recorder collects tools instead of serving them.
type Recorder struct {
	mu       sync.Mutex
	order    []string
	tools    map[string]mcp.Tool
	handlers map[string]mcpserver.ToolHandlerFunc
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		tools:    make(map[string]mcp.Tool),
		handlers: make(map[string]mcpserver.ToolHandlerFunc),
	}
}

// AddTool records tool and its handler.
func (r *Recorder) AddTool(tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[tool.Name]; !ok {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
	r.handlers[tool.Name] = handler
}

// Names returns the tool names in registration order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Tool returns the definition of name.
func (r *Recorder) Tool(t *testing.T, name string) mcp.Tool {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	tool, ok := r.tools[name]
	if !ok {
		t.Fatalf("tool %q was not registered", name)
	}
	return tool
}

// Call invokes the handler of name with args as the authenticated test user.
func (r *Recorder) Call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	r.mu.Lock()
	handler, ok := r.handlers[name]
	r.mu.Unlock()
	if !ok {
		t.Fatalf("tool %q was not registered", name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := handler(AuthedContext(), req)
	if err != nil {
		t.Fatalf("%s returned error: %v", name, err)
	}
	if result == nil {
		t.Fatalf("%s returned nil result", name)
	}
	return result
}

// AuthedContext carries a bearer token and user the way the /mcp middleware sets them.
func AuthedContext() context.Context {
	ctx := google.ContextWithToken(context.Background(), &oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"})
	return google.ContextWithUser(ctx, &google.UserInfo{Email: User, VerifiedEmail: true})
}

// NewAPI starts a fake Google API and returns a ServerContext whose clients talk to it.
func NewAPI(t *testing.T, handler http.Handler, opts ...server.Option) *server.ServerContext {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append(opts, server.WithClientOptions(option.WithEndpoint(srv.URL+"/")))
	sc, err := server.NewServerContext(context.Background(), opts...)
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// NoAPI returns a ServerContext for tests that never reach Google.
func NoAPI(t *testing.T, opts ...server.Option) *server.ServerContext {
	t.Helper()
	return NewAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected API call %s %s", r.Method, r.URL.Path)
		http.Error(w, "unexpected", http.StatusTeapot)
	}), opts...)
}

// Text joins the text content of result.
func Text(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// JSON writes body as a JSON response.
func JSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
