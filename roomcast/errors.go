package roomcast

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// Operator misuse
	ErrorNotConnected
	ErrorAlreadyConnected
	ErrorInvalidConfig

	// Pass-through transport failures
	ErrorTransport

	// Codec failures
	ErrorSerialization
	ErrorUnknownMethod
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorNotConnected:
		return "not_connected"
	case ErrorAlreadyConnected:
		return "already_connected"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorTransport:
		return "transport_error"
	case ErrorSerialization:
		return "serialization_error"
	case ErrorUnknownMethod:
		return "unknown_method"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// RoomcastError is a structured error with code and context.
type RoomcastError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *RoomcastError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *RoomcastError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is comparison by code.
func (e *RoomcastError) Is(target error) bool {
	t, ok := target.(*RoomcastError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new RoomcastError with the given code and message.
func NewError(code ErrorCode, message string) *RoomcastError {
	return &RoomcastError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with a RoomcastError.
func WrapError(code ErrorCode, message string, err error) *RoomcastError {
	return &RoomcastError{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// IsTransportError checks if an error is a wrapped transport failure.
func IsTransportError(err error) bool {
	return hasCode(err, ErrorTransport)
}

// IsNotConnected checks if an error is a not-connected precondition failure.
func IsNotConnected(err error) bool {
	return hasCode(err, ErrorNotConnected)
}

func hasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var re *RoomcastError
	if !errors.As(err, &re) {
		return false
	}
	return re.Code == code
}
