package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Well-known server error codes.
const (
	CodeBadEventQueueID = "BAD_EVENT_QUEUE_ID"
	CodeInvalidAPIKey   = "INVALID_API_KEY"
	CodeRateLimited     = "RATE_LIMIT_HIT"
)

// Sentinel errors for callers that branch on failure class.
var (
	ErrBadEventQueue = errors.New("event queue expired or unknown")
	ErrUnauthorized  = errors.New("authentication failed")
)

// APIError is a decoded server error envelope.
type APIError struct {
	StatusCode int    `json:"-"`
	Result     string `json:"result"`
	Msg        string `json:"msg"`
	Code       string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error %s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("server error (HTTP %d): %s", e.StatusCode, e.Msg)
}

// Unwrap maps known error codes onto sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case CodeBadEventQueueID:
		return ErrBadEventQueue
	case CodeInvalidAPIKey:
		return ErrUnauthorized
	}
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// decodeAPIError returns a non-nil *APIError when the response carries an
// error envelope or a non-2xx status.
func decodeAPIError(status int, data []byte) *APIError {
	var envelope APIError
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Result == "error" {
		envelope.StatusCode = status
		return &envelope
	}
	if status < 200 || status >= 300 {
		return &APIError{StatusCode: status, Result: "error", Msg: http.StatusText(status)}
	}
	return nil
}
