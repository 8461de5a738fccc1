package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// APIError is an error returned by a model provider. Transient errors
// (rate limits, timeouts, 5xx) are worth retrying; everything else is
// terminal for the request.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Transient  bool
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

// newAPIError classifies an HTTP status into the transient/terminal
// taxonomy. 429 and 5xx retry; 4xx (auth, malformed request) do not.
func newAPIError(provider string, status int, message string) *APIError {
	return &APIError{
		Provider:   provider,
		StatusCode: status,
		Message:    message,
		Transient:  status == 429 || status >= 500,
	}
}

// IsTransient reports whether an error is worth retrying: a transient
// APIError, a timeout, or a temporary network failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
