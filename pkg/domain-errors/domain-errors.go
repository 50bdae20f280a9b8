// Package domainerrors carries failure categories through the dashboard
// without tying them to HTTP. Transports map a Code to their own status.
package domainerrors

import "errors"

// Code names a failure category.
type Code string

const (
	CodeNotFound   Code = "not_found"
	CodeBadRequest Code = "bad_request"
	CodeValidation Code = "validation_failed"
	CodeConflict   Code = "conflict"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal_error"

	// Load failures shown to the operator in the status line.
	CodeCustomerListLoadFailed Code = "customer_list_load_failed"
	CodeDashboardLoadFailed    Code = "dashboard_load_failed"

	// CodeUpstreamUnavailable marks a credit backend call that failed at the
	// transport level or with a non-success status.
	CodeUpstreamUnavailable Code = "upstream_unavailable"
)

// Error is a coded failure. Message is safe to show to an operator; Err
// keeps the underlying cause for logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same code, so
// errors.Is(err, &Error{Code: CodeTimeout}) works anywhere in a chain.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap adds a message to err. A code already present in the chain wins
// over code.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		code = existing.Code
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// Classify files err under code regardless of any code already in its
// chain. The original error stays reachable through errors.Is / errors.As.
func Classify(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the outermost code in err's chain, or CodeInternal when
// there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
