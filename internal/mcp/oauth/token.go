package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
)

// tokenResponse is the part of Google's token response the proxy reads.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// ServeToken forwards a token request to Google and relays the response.
//
// The client secret is added when the request uses the configured client id.
// Outside stateless mode a successful response is also saved to the
// credential store under the user's email.
func (h *Handler) ServeToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := instrumentation.StartOAuthSpan(r.Context(), "token")
	defer span.End()

	ip := getClientIP(r, h.trustProxy())

	form, oauthErr := h.tokenRequestForm(w, r)
	if oauthErr != nil {
		h.metrics.RecordOAuthProxyRequest(ctx, "token", instrumentation.OAuthResultFailure)
		h.audit.LogAuthFailure("", form.Get("client_id"), ip, oauthErr.Description)
		instrumentation.SetSpanError(span, oauthErr)
		writeOAuthError(w, oauthErr)
		return
	}

	status, body, contentType, err := h.exchange(ctx, form)
	if err != nil {
		h.logger.Error("token exchange with Google failed", logging.Err(err))
		h.metrics.RecordOAuthProxyRequest(ctx, "token", instrumentation.OAuthResultFailure)
		instrumentation.SetSpanError(span, err)
		writeOAuthError(w, ErrTemporarilyUnavailable("failed to reach the Google token endpoint"))
		return
	}

	if status == http.StatusOK {
		h.metrics.RecordOAuthProxyRequest(ctx, "token", instrumentation.OAuthResultSuccess)
		instrumentation.SetSpanSuccess(span)
		_, _ = h.afterExchange(ctx, form, body, ip)
	} else {
		h.metrics.RecordOAuthProxyRequest(ctx, "token", instrumentation.OAuthResultFailure)
		h.audit.LogAuthFailure("", form.Get("client_id"), ip, fmt.Sprintf("google token endpoint returned %d", status))
	}

	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// tokenRequestForm parses and completes the client's token request.
func (h *Handler) tokenRequestForm(w http.ResponseWriter, r *http.Request) (url.Values, *OAuthError) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTokenRequestBytes)
	if err := r.ParseForm(); err != nil {
		return url.Values{}, ErrInvalidRequest("request body must be application/x-www-form-urlencoded")
	}
	form := url.Values{}
	for k, v := range r.PostForm {
		form[k] = v
	}

	switch grant := form.Get("grant_type"); grant {
	case "authorization_code":
		if form.Get("code") == "" {
			return form, ErrInvalidRequest("code is required")
		}
	case "refresh_token":
		if form.Get("refresh_token") == "" {
			return form, ErrInvalidRequest("refresh_token is required")
		}
	case "":
		return form, ErrInvalidRequest("grant_type is required")
	default:
		return form, ErrUnsupportedGrantType(fmt.Sprintf("grant_type %q is not supported", grant))
	}

	// Client credentials may arrive via HTTP Basic; Google accepts them in the body.
	if id, secret, ok := r.BasicAuth(); ok {
		if form.Get("client_id") != "" && form.Get("client_id") != id {
			return form, ErrInvalidClient("client_id in body and Authorization header differ")
		}
		form.Set("client_id", id)
		if secret != "" {
			form.Set("client_secret", secret)
		}
	}

	if form.Get("client_id") == "" {
		form.Set("client_id", h.config.ClientID)
	}
	if form.Get("client_id") == h.config.ClientID && form.Get("client_secret") == "" && h.config.ClientSecret != "" {
		form.Set("client_secret", h.config.ClientSecret)
	}
	return form, nil
}

func (h *Handler) exchange(ctx context.Context, form url.Values) (int, []byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to read token response: %w", err)
	}
	return resp.StatusCode, body, resp.Header.Get("Content-Type"), nil
}

// afterExchange audits a successful exchange and persists the token when a
// store is configured. It returns the token owner, if known, and whether the
// credentials were saved.
func (h *Handler) afterExchange(ctx context.Context, form url.Values, body []byte, ip string) (string, bool) {
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		h.logger.Warn("unexpected token response from Google", logging.Err(err))
		return "", false
	}

	grant := form.Get("grant_type")
	email := emailFromIDToken(tr.IDToken)
	if email == "" && h.config.Store != nil {
		user, err := h.validator.Validate(ctx, tr.AccessToken)
		if err != nil {
			h.logger.Warn("could not identify token owner", logging.Err(err))
		} else {
			email = user.Email
		}
	}

	if grant == "refresh_token" {
		h.audit.LogTokenRefreshed(email, form.Get("client_id"), ip)
	} else {
		h.audit.LogTokenIssued(email, form.Get("client_id"), ip, tr.Scope)
	}

	if h.config.Store == nil || email == "" {
		return email, false
	}

	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = form.Get("refresh_token")
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	scopes := strings.Fields(tr.Scope)
	if len(scopes) == 0 {
		scopes = h.scopes()
	}
	creds := google.NewCredentials(tok, form.Get("client_id"), scopes)
	if err := h.config.Store.SaveCredentials(ctx, email, creds); err != nil {
		h.logger.Error("failed to save credentials", logging.UserHash(email), logging.Err(err))
		return email, false
	}
	h.logger.Info("saved Google credentials", logging.UserHash(email), slog.String("grant_type", grant))
	return email, true
}

// emailFromIDToken returns the email claim of an id_token, or "". The
// id_token comes straight from Google's TLS response, so its signature is
// not checked again.
func emailFromIDToken(idToken string) string {
	if idToken == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return ""
	}
	email, _ := claims["email"].(string)
	return strings.ToLower(email)
}
