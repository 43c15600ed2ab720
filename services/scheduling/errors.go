package scheduling

import (
	"errors"
	"fmt"
)

// Error codes surfaced to the API boundary.
const (
	CodeValidation   = "validation_error"
	CodeForbidden    = "forbidden"
	CodeInvalidState = "invalid_state"
	CodeNotFound     = "not_found"
)

// Error is a domain error with a stable code the handlers map to HTTP statuses.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &Error{Code: CodeValidation, Message: msg}
}

func NewForbidden(msg string) error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func NewInvalidState(msg string) error {
	return &Error{Code: CodeInvalidState, Message: msg}
}

func NewNotFound(msg string) error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// CodeOf extracts the domain error code, or "" for non-domain errors.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
