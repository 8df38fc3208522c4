package errors

import (
	"fmt"
	"time"
)

// Error types for the fzmcp tool server
type ErrorType string

const (
	// A required external executable is absent from PATH
	ErrorTypeMissingBinary ErrorType = "missing_binary"

	// A required tool argument was empty or malformed
	ErrorTypeBadRequest ErrorType = "bad_request"

	// An external process exited with an unexpected status
	ErrorTypeSubprocess ErrorType = "subprocess"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// MissingBinaryError is raised before any process is spawned when a
// required CLI binary cannot be resolved on PATH.
type MissingBinaryError struct {
	Type      ErrorType
	Name      string
	Timestamp time.Time
}

// NewMissingBinary creates a missing-binary error naming the tool
func NewMissingBinary(name string) *MissingBinaryError {
	return &MissingBinaryError{
		Type:      ErrorTypeMissingBinary,
		Name:      name,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *MissingBinaryError) Error() string {
	return fmt.Sprintf("cannot find the `%s` binary on PATH. Install it first.", e.Name)
}

// BadRequestError reports a missing or invalid tool argument. It is
// returned before any external process is started.
type BadRequestError struct {
	Type      ErrorType
	Field     string
	Reason    string
	Timestamp time.Time
}

// NewBadRequest creates a bad-request error for a required field
func NewBadRequest(field string) *BadRequestError {
	return &BadRequestError{
		Type:      ErrorTypeBadRequest,
		Field:     field,
		Timestamp: time.Now(),
	}
}

// WithReason attaches an explanation beyond "required"
func (e *BadRequestError) WithReason(reason string) *BadRequestError {
	e.Reason = reason
	return e
}

// Error implements the error interface
func (e *BadRequestError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("'%s' argument is invalid: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("'%s' argument is required", e.Field)
}

// SubprocessError wraps an unexpected exit from an external process,
// carrying whatever the process wrote to its error stream.
type SubprocessError struct {
	Type       ErrorType
	Command    string
	ExitCode   int
	Stderr     string
	Underlying error
	Timestamp  time.Time
}

// NewSubprocess creates a subprocess error for a command invocation
func NewSubprocess(command string, exitCode int, stderr string, err error) *SubprocessError {
	return &SubprocessError{
		Type:       ErrorTypeSubprocess,
		Command:    command,
		ExitCode:   exitCode,
		Stderr:     stderr,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface. Captured stderr wins over the
// generic exit-code message when the process said anything useful.
func (e *SubprocessError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s failed with code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s failed: %v", e.Command, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *SubprocessError) Unwrap() error {
	return e.Underlying
}
