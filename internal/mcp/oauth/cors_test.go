package oauth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func routeByName(t *testing.T, h *Handler, name string) Route {
	t.Helper()
	for _, r := range h.Routes() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("route %q not found", name)
	return Route{}
}

func TestWrap_Preflight(t *testing.T) {
	h := newTestHandler(t, nil)
	wrapped := h.Wrap(routeByName(t, h, "token"))

	req := httptest.NewRequest(http.MethodOptions, PathToken, nil)
	req.Header.Set("Origin", "http://localhost:6274")
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:6274" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q, want %q", got, "POST, OPTIONS")
	}
}

func TestWrap_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		route     string
		method    string
		wantAllow string
	}{
		{route: "token", method: http.MethodGet, wantAllow: "POST, OPTIONS"},
		{route: "register", method: http.MethodPut, wantAllow: "POST, OPTIONS"},
		{route: "protected_resource", method: http.MethodPost, wantAllow: "GET, OPTIONS"},
		{route: "authorize", method: http.MethodDelete, wantAllow: "GET, OPTIONS"},
	}

	for _, tt := range tests {
		t.Run(tt.route+" "+tt.method, func(t *testing.T) {
			route := routeByName(t, h, tt.route)
			w := httptest.NewRecorder()
			h.Wrap(route).ServeHTTP(w, httptest.NewRequest(tt.method, route.Path, nil))

			if w.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want 405", w.Code)
			}
			if got := w.Header().Get("Allow"); got != tt.wantAllow {
				t.Errorf("Allow = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestWrap_SecurityHeaders(t *testing.T) {
	h := newTestHandler(t, nil)
	w := httptest.NewRecorder()
	h.Wrap(routeByName(t, h, "authorization_server")).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, PathAuthorizationServer, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	for header, want := range map[string]string{
		"X-Content-Type-Options":      "nosniff",
		"X-Frame-Options":             "DENY",
		"Access-Control-Allow-Origin": "*",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestWrap_DisallowedOrigin(t *testing.T) {
	h := newTestHandler(t, func(c *Config) { c.AllowedOrigins = []string{"https://app.example.com"} })

	req := httptest.NewRequest(http.MethodGet, PathAuthorizationServer, nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	h.Wrap(routeByName(t, h, "authorization_server")).ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestWrap_RateLimit(t *testing.T) {
	h := newTestHandler(t, func(c *Config) { c.RateLimit = RateLimitConfig{Rate: 1, Burst: 2} })
	wrapped := h.Wrap(routeByName(t, h, "client_config"))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, PathOAuthClient, nil)
		req.RemoteAddr = "198.51.100.7:5555"
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
			t.Error("429 responses should carry Retry-After")
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
}
