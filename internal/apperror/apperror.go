package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags the failure category of an Error.
type Kind int

const (
	KindGeneric Kind = iota
	KindNotFound
	KindValidation
	KindUnauthorized
)

const (
	DefaultMessage             = "Something went wrong on the server"
	DefaultUnauthorizedMessage = "Authentication required"
	ValidationMessage          = "Validation failed"
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "generic"
	}
}

// Error is the single failure type raised by gates and operations.
// Errors is only populated for KindValidation.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Errors  []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NotFound builds "<resource> not found" with status 404.
func NotFound(resource string) *Error {
	if resource == "" {
		resource = "Resource"
	}
	return &Error{
		Kind:    KindNotFound,
		Message: resource + " not found",
		Status:  http.StatusNotFound,
	}
}

// Validation carries every accumulated field error, in order.
func Validation(errs []string) *Error {
	out := make([]string, len(errs))
	copy(out, errs)
	return &Error{
		Kind:    KindValidation,
		Message: ValidationMessage,
		Status:  http.StatusBadRequest,
		Errors:  out,
	}
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = DefaultUnauthorizedMessage
	}
	return &Error{
		Kind:    KindUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// Generic is an unclassified failure with an explicit status.
// A zero status means 500 and an empty message means DefaultMessage.
func Generic(status int, message string) *Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if message == "" {
		message = DefaultMessage
	}
	return &Error{
		Kind:    KindGeneric,
		Message: message,
		Status:  status,
	}
}

// Internal hides cause behind the default message. The cause stays
// reachable through errors.Unwrap for logging.
func Internal(cause error) *Error {
	e := Generic(http.StatusInternalServerError, DefaultMessage)
	e.cause = cause
	return e
}

// From classifies any error. Non-*Error values become Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
