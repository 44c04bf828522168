// Package vmerr defines the error kinds a VM invocation can fail with.
// Every error aborts the invocation; local recovery is never attempted.
package vmerr

import (
	"errors"
	"fmt"

	"github.com/zinc-lang/zinc/isa"
)

// Kind identifies one of the error categories.
type Kind int

const (
	ConstraintUnsatisfied Kind = iota
	OverflowOrUnderflow
	IndexOutOfBounds
	StackUnderflow
	FrameCorruption
	UnknownInstruction
	DecodingError
	TypeMismatch
	StorageError
	NativeLibraryError
	InternalError
	StepLimitExceeded
)

func (k Kind) String() string {
	names := [...]string{
		"ConstraintUnsatisfied",
		"OverflowOrUnderflow",
		"IndexOutOfBounds",
		"StackUnderflow",
		"FrameCorruption",
		"UnknownInstruction",
		"DecodingError",
		"TypeMismatch",
		"StorageError",
		"NativeLibraryError",
		"InternalError",
		"StepLimitExceeded",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// RuntimeError is the error type every VM operation returns. It carries
// the error kind, the most recent source location, and a human message
// ("require"/"assert" messages are surfaced verbatim here).
type RuntimeError struct {
	Kind     Kind
	Location isa.Location
	Message  string
	Wrapped  error
}

func (e *RuntimeError) Error() string {
	if e.Location.File != "" {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Location, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Wrapped }

// New builds a RuntimeError of the given kind with a formatted message.
func New(kind Kind, loc isa.Location, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a RuntimeError that chains an underlying error, matching the
// teacher's "%w"-wrapping convention throughout the codebase.
func Wrap(kind Kind, loc isa.Location, err error, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{
		Kind:     kind,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
		Wrapped:  err,
	}
}

// Is reports whether err is a RuntimeError of the given kind, used by
// callers and tests that only care about the error category.
func Is(err error, kind Kind) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

// Diagnostic is the structured form of a RuntimeError: a stable code,
// the source location, and the verbatim message. zkrpc.Handler does not
// use it; its error responses carry only the error's text.
type Diagnostic struct {
	Code     string       `json:"code"`
	Location isa.Location `json:"location"`
	Message  string       `json:"message"`
}

// ToDiagnostic converts any error into a Diagnostic, preserving kind and
// location for RuntimeError values and falling back to InternalError for
// anything else (a compiler or backend bug reaching the host layer).
func ToDiagnostic(err error) Diagnostic {
	var re *RuntimeError
	if errors.As(err, &re) {
		return Diagnostic{Code: re.Kind.String(), Location: re.Location, Message: re.Message}
	}
	return Diagnostic{Code: InternalError.String(), Message: err.Error()}
}
