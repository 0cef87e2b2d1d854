package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrTransport = errors.New("backend unreachable")
	ErrDecode    = errors.New("unexpected backend response")
)

// APIError is a non-2xx answer from the backend. Message is the
// server-supplied "error" or "message" field when there is one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload.Error.(string); ok && s != "" {
			apiErr.Message = s
		} else if payload.Message != "" {
			apiErr.Message = payload.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(http.StatusText(status))
	}
	return apiErr
}

// IsAuthError reports whether err means the session is missing or expired.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// MessageOr returns the server-supplied message or fallback.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Message != http.StatusText(apiErr.StatusCode) {
		return apiErr.Message
	}
	return fallback
}
