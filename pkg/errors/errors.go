// Package errors provides structured error handling for respawn
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents an unknown pool or group id
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents a duplicate id
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeConfig represents a misconfigured template or pool
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeExhausted represents a pool with nothing available
	ErrorTypeExhausted ErrorType = "exhausted"
	// ErrorTypeNoSpawnPoint represents an empty spawn candidate set
	ErrorTypeNoSpawnPoint ErrorType = "no_spawn_point"
)

// Sentinels usable with errors.Is. An error matches a sentinel when it
// wraps it or carries the same type and message.
var (
	ErrDuplicatePool   = &Error{Type: ErrorTypeConflict, Message: "pool already exists"}
	ErrUnknownPool     = &Error{Type: ErrorTypeNotFound, Message: "pool not found"}
	ErrUnknownTemplate = &Error{Type: ErrorTypeNotFound, Message: "template not found"}
	ErrInvalidTemplate = &Error{Type: ErrorTypeConfig, Message: "template is not poolable"}
	ErrPoolExhausted   = &Error{Type: ErrorTypeExhausted, Message: "pool has no available entries"}
	ErrNoSpawnPoint    = &Error{Type: ErrorTypeNoSpawnPoint, Message: "no valid spawn point"}
	ErrManualPolicy    = &Error{Type: ErrorTypeValidation, Message: "manual policy requires an explicit spawn point"}
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same type and message.
// Use IsType to match on the category alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.Type == t.Type && e.Message == t.Message)
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the type of the outermost *Error in err's chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ErrorTypeInternal
	}
	return e.Type
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
