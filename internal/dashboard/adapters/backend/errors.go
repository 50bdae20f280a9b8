package backend

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a failed backend call.
type ErrorCategory string

const (
	ErrorTimeout     ErrorCategory = "timeout"
	ErrorOutage      ErrorCategory = "outage"
	ErrorBadStatus   ErrorCategory = "bad_status"
	ErrorNotFound    ErrorCategory = "not_found"
	ErrorBadData     ErrorCategory = "bad_data"
	ErrorCircuitOpen ErrorCategory = "circuit_open"
	ErrorInternal    ErrorCategory = "internal"
)

// UpstreamError is returned for every failed backend call. Network failures
// and non-2xx responses are both reported through it.
type UpstreamError struct {
	Category   ErrorCategory
	Endpoint   string
	StatusCode int
	Message    string
	Underlying error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("credit backend %s [%s]: %s", e.Endpoint, e.Category, e.Message)
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Underlying
}

// countsAsFailure reports whether the error says the backend itself is
// unhealthy, as opposed to rejecting one request.
func (e *UpstreamError) countsAsFailure() bool {
	switch e.Category {
	case ErrorTimeout, ErrorOutage:
		return true
	case ErrorBadStatus:
		return e.StatusCode >= 500
	}
	return false
}

func newUpstreamError(category ErrorCategory, endpoint, message string, underlying error) *UpstreamError {
	return &UpstreamError{
		Category:   category,
		Endpoint:   endpoint,
		Message:    message,
		Underlying: underlying,
	}
}

// GetCategory extracts the category, or ErrorInternal for foreign errors.
func GetCategory(err error) ErrorCategory {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Category
	}
	return ErrorInternal
}
