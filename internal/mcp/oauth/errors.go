package oauth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// RFC 6749 and RFC 7591 error codes returned by the proxy itself. Errors
// from Google's token endpoint are relayed unchanged.
const (
	codeInvalidRequest         = "invalid_request"
	codeInvalidClient          = "invalid_client"
	codeInvalidClientMetadata  = "invalid_client_metadata"
	codeInvalidToken           = "invalid_token"
	codeUnsupportedGrantType   = "unsupported_grant_type"
	codeAccessDenied           = "access_denied"
	codeUnauthorized           = "unauthorized"
	codeServerError            = "server_error"
	codeTemporarilyUnavailable = "temporarily_unavailable"
	codeRateLimited            = "rate_limit_exceeded"
)

// OAuthError is an error answered to the client as an RFC 6749 error body.
type OAuthError struct {
	Code        string
	Description string
	Status      int
}

func (e *OAuthError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

// Is matches another *OAuthError by code, so errors.Is(err,
// ErrInvalidToken("")) holds for any invalid_token error.
func (e *OAuthError) Is(target error) bool {
	var t *OAuthError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func NewOAuthError(code, description string, status int) *OAuthError {
	return &OAuthError{Code: code, Description: description, Status: status}
}

func ErrInvalidRequest(desc string) *OAuthError {
	return NewOAuthError(codeInvalidRequest, desc, http.StatusBadRequest)
}

func ErrInvalidClient(desc string) *OAuthError {
	return NewOAuthError(codeInvalidClient, desc, http.StatusUnauthorized)
}

func ErrInvalidToken(desc string) *OAuthError {
	return NewOAuthError(codeInvalidToken, desc, http.StatusUnauthorized)
}

func ErrUnsupportedGrantType(desc string) *OAuthError {
	return NewOAuthError(codeUnsupportedGrantType, desc, http.StatusBadRequest)
}

func ErrServerError(desc string) *OAuthError {
	return NewOAuthError(codeServerError, desc, http.StatusInternalServerError)
}

// ErrTemporarilyUnavailable is answered when Google cannot be reached.
func ErrTemporarilyUnavailable(desc string) *OAuthError {
	return NewOAuthError(codeTemporarilyUnavailable, desc, http.StatusServiceUnavailable)
}

func ErrRateLimited(desc string) *OAuthError {
	return NewOAuthError(codeRateLimited, desc, http.StatusTooManyRequests)
}

func writeOAuthError(w http.ResponseWriter, e *OAuthError) {
	writeJSON(w, e.Status, ErrorResponse{Error: e.Code, ErrorDescription: e.Description})
}

// writeJSON writes body with no-store caching, which RFC 6749 requires for
// token responses and which every proxy response follows.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
