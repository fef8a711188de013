// Package exitcode maps fatal pipeline errors onto process exit codes.
package exitcode

import (
	"errors"
	"fmt"
)

// Exit codes for the fatal error kinds named in the fragmenter's error
// handling design. Zero is reserved for success.
const (
	OK = 0

	ConfigInvalid           = 10
	CLIInvalid              = 11
	SourceUnreadable        = 12
	ParseError              = 13
	SchemaContractViolation = 14
	IOError                 = 15
)

// Error wraps an underlying error with the exit code the CLI should use
// when it propagates out of a run.
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap annotates err with a message and the exit code that should be used
// for it, following the same shape as a hand-rolled CLI exitError helper:
// a single wrapped error the root command can unwrap and act on.
func Wrap(code int, message string, err error) error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the exit code from err, defaulting to IOError for any
// error that wasn't produced by Wrap (an unclassified failure is still a
// failure, not a success).
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return IOError
}
