package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"academic-dashboard/internal/httpx"
)

// TransportError covers network failures, timeouts and unreadable payloads.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("apiclient: %s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthenticationError is a missing or rejected credential (HTTP 401).
type AuthenticationError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("apiclient: %s: not authenticated: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("apiclient: %s: not authenticated", e.Op)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// AuthorizationError is a valid identity without access (HTTP 403).
type AuthorizationError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthorizationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("apiclient: %s: forbidden: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("apiclient: %s: forbidden", e.Op)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// classify maps raw httpx/transport failures onto the client's error types.
// Other non-2xx statuses stay *httpx.HTTPError (wrapped).
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var herr *httpx.HTTPError
	if errors.As(err, &herr) {
		switch herr.StatusCode {
		case http.StatusUnauthorized:
			return &AuthenticationError{Op: op, Message: messageFromBody(herr.Body), Err: err}
		case http.StatusForbidden:
			return &AuthorizationError{Op: op, Message: messageFromBody(herr.Body), Err: err}
		}
		return fmt.Errorf("apiclient: %s: %w", op, err)
	}
	return &TransportError{Op: op, Err: err}
}

// ServerMessage returns the human message the server attached to a failed
// response, or "" when there is none.
func ServerMessage(err error) string {
	var aerr *AuthenticationError
	if errors.As(err, &aerr) {
		return aerr.Message
	}
	var ferr *AuthorizationError
	if errors.As(err, &ferr) {
		return ferr.Message
	}
	var herr *httpx.HTTPError
	if errors.As(err, &herr) {
		return messageFromBody(herr.Body)
	}
	return ""
}

func messageFromBody(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, k := range []string{"message", "error", "detail"} {
		switch v := payload[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			if s, ok := v["message"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
