// Package errs implements the engine's error taxonomy: a small, closed set
// of fault kinds rather than an open type hierarchy, with user-visible
// rendering matching the single-line prefixes the console layer expects.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind categorizes a fault. It is a kind, not a Go type: every fault in the
// engine is one of these four, and the kind alone determines how far the
// fault propagates (see Error.Fatal).
type Kind int

const (
	// Parse indicates a malformed command or input stream. Recoverable;
	// reported to the user; the engine continues.
	Parse Kind = iota
	// Execution indicates an operation inapplicable to the current state.
	// Recoverable per-function.
	Execution
	// LowLevel indicates an internal invariant was violated. Fatal for the
	// current function: the driver aborts that Funcdata and continues with
	// the next.
	LowLevel
	// Decoder indicates an encoded document was malformed. Fatal for the
	// current operation (e.g. a restore).
	Decoder
)

// prefix is the single-line category string placed before the detail.
func (k Kind) prefix() string {
	switch k {
	case Parse:
		return "Parse"
	case Execution:
		return "Execution"
	case LowLevel:
		return "Low-level ERROR"
	case Decoder:
		return "Decoding ERROR"
	default:
		return "ERROR"
	}
}

func (k Kind) String() string { return k.prefix() }

// Error is the engine's single error type: a Kind plus a wrapped cause.
// Causes are wrapped with pkg/errors so a stack trace survives from the
// point of first failure (deep in an Action or Rule) up to the driver.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

// New creates a bare Error of the given kind with a formatted message.
func New(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind k to cause, preserving cause's stack trace via
// pkg/errors. If cause is nil, Wrap returns nil.
func Wrap(k Kind, cause error, format string, args ...interface{}) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: k, msg: fmt.Sprintf(format, args...), err: errors.WithStack(cause)}
}

// Error renders the §7 user-visible line: "<Kind prefix>: <detail>".
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.prefix(), e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.prefix(), e.msg)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Cause returns the root cause via pkg/errors, or e itself if there is none.
func Cause(err error) error { return errors.Cause(err) }

// Fatal reports whether a fault of this kind aborts the current function.
// Only LowLevel faults do; Parse and Execution are recoverable at the
// point they are raised, and Decoder faults abort only the current decode
// operation rather than a function (there being no function yet to abort).
func (e *Error) Fatal() bool { return e.Kind == LowLevel }

// As reports whether err is (or wraps) an *Error, writing it into out.
func As(err error, out **Error) bool {
	return errors.As(err, out)
}
