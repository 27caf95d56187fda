package oauth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
)

// ServeRegister implements RFC 7591 dynamic client registration by handing
// out the preconfigured Google client. redirect_uris and client_name from
// the request are echoed back.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	body := http.MaxBytesReader(w, r.Body, maxTokenRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.metrics.RecordOAuthProxyRequest(r.Context(), "register", instrumentation.OAuthResultFailure)
		writeOAuthError(w, NewOAuthError(codeInvalidClientMetadata, "request body must be a JSON client metadata document", http.StatusBadRequest))
		return
	}

	resp := ClientMetadata{
		ClientID:                h.config.ClientID,
		ClientSecret:            h.config.ClientSecret,
		ClientName:              req.ClientName,
		ClientURI:               h.config.BaseURL,
		RedirectURIs:            req.RedirectURIs,
		GrantTypes:              supportedGrantTypes,
		ResponseTypes:           supportedResponseTypes,
		Scope:                   req.Scope,
		TokenEndpointAuthMethod: "client_secret_post",
		ClientIDIssuedAt:        time.Now().Unix(),
	}
	if resp.ClientName == "" {
		resp.ClientName = clientName
	}
	if len(resp.RedirectURIs) == 0 {
		resp.RedirectURIs = h.redirectURIs()
	}
	if resp.Scope == "" {
		resp.Scope = strings.Join(h.scopes(), " ")
	}
	if h.config.ClientSecret == "" {
		resp.TokenEndpointAuthMethod = "none"
	} else {
		var never int64
		resp.ClientSecretExpiresAt = &never
	}

	h.audit.LogClientRegistered(resp.ClientName, getClientIP(r, h.trustProxy()))
	h.metrics.RecordOAuthProxyRequest(r.Context(), "register", instrumentation.OAuthResultSuccess)
	writeJSON(w, http.StatusCreated, resp)
}
