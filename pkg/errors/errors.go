package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeStore    ErrorType = "store"
	ErrorTypeNotFound ErrorType = "not_found"
	ErrorTypeBrowser  ErrorType = "browser"
	ErrorTypeQuota    ErrorType = "quota"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// ErrNotFound is returned when a lookup finds no matching record
var ErrNotFound = &Error{Type: ErrorTypeNotFound, Message: "record not found"}

// Error represents a failure with type information
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same type, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a typed error wrapping err
func New(errorType ErrorType, message string, err error) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// Store wraps a database failure
func Store(message string, err error) *Error {
	return New(ErrorTypeStore, message, err)
}

// Browser wraps a browser automation failure
func Browser(message string, err error) *Error {
	return New(ErrorTypeBrowser, message, err)
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

// IsStoreFailure reports whether err is a database failure
func IsStoreFailure(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeStore
}
