package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Common errors returned by the client.
var (
	// ErrMissingCredential is returned when no API key is available from the
	// call site or the client configuration.
	ErrMissingCredential = errors.New("missing api key")

	// ErrInvalidTimeout is returned when the resolved timeout is not positive.
	ErrInvalidTimeout = errors.New("timeout must be a positive duration")

	// ErrRequestTimeout is returned when the timeout fires before the response arrives.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrRequestAborted is returned when the request is cancelled before the
	// response arrives. Timeouts also match it.
	ErrRequestAborted = errors.New("request aborted")

	// ErrQuotaExhausted is returned when the quota guard blocks a search.
	ErrQuotaExhausted = errors.New("search quota exhausted")
)

// ErrorClass represents a classification of client errors.
type ErrorClass string

const (
	// ErrorClassValidation represents credential and timeout validation failures.
	ErrorClassValidation ErrorClass = "validation"

	// ErrorClassTimeout represents requests cancelled by their timeout.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassAborted represents requests cancelled by the caller's context.
	ErrorClassAborted ErrorClass = "aborted"

	// ErrorClassTransport represents DNS, connection and protocol failures.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassAPI represents non-2xx responses from the API.
	ErrorClassAPI ErrorClass = "api"
)

// RequestError is returned when a request is cancelled before its response
// arrives.
type RequestError struct {
	Class   ErrorClass
	Path    string
	Timeout time.Duration
	Err     error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Class == ErrorClassTimeout {
		return fmt.Sprintf("request %s timed out after %s: %v", e.Path, e.Timeout, e.Err)
	}
	return fmt.Sprintf("request %s aborted: %v", e.Path, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is matches ErrRequestTimeout for timeouts and ErrRequestAborted for both
// timeouts and caller cancellations.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrRequestTimeout:
		return e.Class == ErrorClassTimeout
	case ErrRequestAborted:
		return e.Class == ErrorClassTimeout || e.Class == ErrorClassAborted
	default:
		return false
	}
}

// APIError represents a non-2xx response decoded by the convenience calls.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// newAPIError builds an APIError from a response body. The API reports
// failures as {"error": "..."}; anything else falls back to the status text.
func newAPIError(statusCode int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	message := http.StatusText(statusCode)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}
	return &APIError{StatusCode: statusCode, Message: message}
}

// IsTimeout reports whether err was caused by a request timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrRequestTimeout)
}

// classify maps an error to its class for metrics.
func classify(err error) ErrorClass {
	var reqErr *RequestError
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrMissingCredential), errors.Is(err, ErrInvalidTimeout), errors.Is(err, ErrQuotaExhausted):
		return ErrorClassValidation
	case errors.As(err, &reqErr):
		return reqErr.Class
	case errors.As(err, &apiErr):
		return ErrorClassAPI
	default:
		return ErrorClassTransport
	}
}

// countError records err in the error metrics.
func countError(err error) {
	errorsTotal.WithLabelValues(string(classify(err))).Inc()
}
