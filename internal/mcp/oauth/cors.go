package oauth

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
)

const corsAllowHeaders = "Authorization, Content-Type, Accept, Mcp-Session-Id, Mcp-Protocol-Version"

// Wrap applies CORS, the method guard, security headers and rate limiting to route.
//
// OPTIONS is answered with 204 for every route. Any other method not in
// route.Methods gets 405 with an Allow header.
func (h *Handler) Wrap(route Route) http.Handler {
	allow := strings.Join(append(slices.Clone(route.Methods), http.MethodOptions), ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.setCORSHeaders(w, r, allow)
		setSecurityHeaders(w)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if !slices.Contains(route.Methods, r.Method) {
			w.Header().Set("Allow", allow)
			writeOAuthError(w, NewOAuthError(codeInvalidRequest,
				fmt.Sprintf("method %s not allowed, use %s", r.Method, allow), http.StatusMethodNotAllowed))
			return
		}

		if h.rateLimiter != nil {
			ip := getClientIP(r, h.trustProxy())
			if !h.rateLimiter.Allow(ip) {
				h.audit.LogRateLimitExceeded(ip, route.Path)
				h.metrics.RecordOAuthProxyRequest(r.Context(), route.Name, instrumentation.OAuthResultFailure)
				w.Header().Set("Retry-After", "1")
				writeOAuthError(w, ErrRateLimited("rate limit exceeded, try again later"))
				return
			}
		}

		route.Handler(w, r)
	})
}

func (h *Handler) originAllowed(origin string) bool {
	return len(h.config.AllowedOrigins) == 0 || slices.Contains(h.config.AllowedOrigins, origin)
}

func (h *Handler) setCORSHeaders(w http.ResponseWriter, r *http.Request, allow string) {
	origin := r.Header.Get("Origin")
	header := w.Header()
	switch {
	case origin != "" && h.originAllowed(origin):
		header.Set("Access-Control-Allow-Origin", origin)
		header.Add("Vary", "Origin")
	case len(h.config.AllowedOrigins) == 0:
		header.Set("Access-Control-Allow-Origin", "*")
	default:
		return
	}
	header.Set("Access-Control-Allow-Methods", allow)
	header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	header.Set("Access-Control-Expose-Headers", "WWW-Authenticate, Mcp-Session-Id")
	header.Set("Access-Control-Max-Age", "86400")
}

func setSecurityHeaders(w http.ResponseWriter) {
	header := w.Header()
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set("X-Frame-Options", "DENY")
	header.Set("Referrer-Policy", "no-referrer")
}
