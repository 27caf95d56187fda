package oauth

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
)

// CallbackRoute is where Google sends the browser after consent when a
// client uses the redirect URI advertised by /.well-known/oauth-client.
// Its path follows the configured redirect URI.
func (h *Handler) CallbackRoute() Route {
	path := PathCallback
	if u, err := url.Parse(h.config.RedirectURI); err == nil && u.Path != "" {
		path = u.Path
	}
	return Route{Path: path, Methods: []string{http.MethodGet}, Name: "callback", Handler: h.ServeCallback}
}

// ServeCallback exchanges the authorization code with Google and, outside
// stateless mode, saves the credentials under the user's email. The browser
// gets a plain text page; the MCP client picks up the stored credentials on
// its next authenticated request.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := instrumentation.StartOAuthSpan(r.Context(), "callback")
	defer span.End()

	ip := getClientIP(r, h.trustProxy())
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Warn("Google consent failed", "error", errParam, "description", query.Get("error_description"))
		h.audit.LogAuthFailure("", h.config.ClientID, ip, "consent denied: "+errParam)
		h.metrics.RecordOAuthProxyRequest(ctx, "callback", instrumentation.OAuthResultFailure)
		writeCallbackPage(w, http.StatusBadRequest, fmt.Sprintf("Google authorization failed: %s", errParam))
		return
	}

	code := query.Get("code")
	if code == "" {
		h.metrics.RecordOAuthProxyRequest(ctx, "callback", instrumentation.OAuthResultFailure)
		writeCallbackPage(w, http.StatusBadRequest, "Missing authorization code.")
		return
	}

	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {h.config.RedirectURI},
		"client_id":    {h.config.ClientID},
	}
	if h.config.ClientSecret != "" {
		form.Set("client_secret", h.config.ClientSecret)
	}

	status, body, _, err := h.exchange(ctx, form)
	if err != nil {
		h.logger.Error("code exchange with Google failed", logging.Err(err))
		h.metrics.RecordOAuthProxyRequest(ctx, "callback", instrumentation.OAuthResultFailure)
		instrumentation.SetSpanError(span, err)
		writeCallbackPage(w, http.StatusServiceUnavailable, "Could not reach Google, try signing in again.")
		return
	}
	if status != http.StatusOK {
		h.audit.LogAuthFailure("", h.config.ClientID, ip, fmt.Sprintf("google token endpoint returned %d", status))
		h.metrics.RecordOAuthProxyRequest(ctx, "callback", instrumentation.OAuthResultFailure)
		writeCallbackPage(w, http.StatusBadGateway, "Google rejected the authorization code, try signing in again.")
		return
	}

	h.metrics.RecordOAuthProxyRequest(ctx, "callback", instrumentation.OAuthResultSuccess)
	instrumentation.SetSpanSuccess(span)

	email, saved := h.afterExchange(ctx, form, body, ip)
	switch {
	case saved:
		writeCallbackPage(w, http.StatusOK, fmt.Sprintf("Signed in as %s. You can close this window and return to your MCP client.", email))
	case h.config.Store == nil:
		writeCallbackPage(w, http.StatusOK, "Signed in. This server does not store credentials, so finish signing in through your MCP client.")
	default:
		writeCallbackPage(w, http.StatusInternalServerError, "Signed in, but the credentials could not be saved. Try again.")
	}
}

func writeCallbackPage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = fmt.Fprintln(w, message)
}
