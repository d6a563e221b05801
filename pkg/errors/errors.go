// Package errors provides structured error handling for treeconf
package errors

import (
	"errors"
	"runtime"

	stringpool "github.com/quantfoundry/treeconf/pkg/strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeKind represents key or value type contract violations
	// (non-scalar keys, typed lookups resolving to the wrong type)
	ErrorTypeKind ErrorType = "kind"
	// ErrorTypeNotFound represents a missing key, or a lookup path that
	// continues past a leaf value
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeInvalidValue represents a value that cannot be stored
	// (raw mapping leaves) or an unrecognized mode string
	ErrorTypeInvalidValue ErrorType = "invalid_value"
	// ErrorTypeReadOnly represents a write attempted on a read-only config
	ErrorTypeReadOnly ErrorType = "read_only"
	// ErrorTypeDuplicateKey represents a key that already exists where a
	// fresh one is required
	ErrorTypeDuplicateKey ErrorType = "duplicate_key"
	// ErrorTypeOverwrite represents an update colliding with an existing
	// path under assert-on-overwrite semantics
	ErrorTypeOverwrite ErrorType = "overwrite"
	// ErrorTypeInvalidConfig represents a config-level contract violation,
	// such as an update with no resolvable update mode
	ErrorTypeInvalidConfig ErrorType = "invalid_config"
	// ErrorTypeDuplicateConfig represents two configs rendering identically
	// where distinct configs are required
	ErrorTypeDuplicateConfig ErrorType = "duplicate_config"
	// ErrorTypeSyntax represents malformed config wire text
	ErrorTypeSyntax ErrorType = "syntax"
	// ErrorTypeSerialization represents a failed serialization round-trip check
	ErrorTypeSerialization ErrorType = "serialization"
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
		return stringpool.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return stringpool.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
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
		Message: stringpool.Sprintf(format, args...),
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

// TypeOf returns the error type of err, or ErrorTypeInternal for errors
// produced outside this package.
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
