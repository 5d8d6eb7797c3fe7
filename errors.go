package ember

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the caller's ability to act on it.
type Kind uint8

const (
	// KindInvalidArgument marks errors caused by out-of-range or otherwise
	// malformed values passed into an operation.
	KindInvalidArgument Kind = iota + 1

	// KindLogic marks misuse of the API: operations that are invalid in
	// the current state regardless of argument values.
	KindLogic

	// KindRuntime marks failures of the environment: unparseable assets,
	// shader compilation failures, backend resource creation failures.
	KindRuntime

	// KindInternal marks violated internal invariants. These indicate a
	// bug in ember itself.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindLogic:
		return "logic error"
	case KindRuntime:
		return "runtime error"
	case KindInternal:
		return "internal error"
	default:
		return "unknown"
	}
}

// Error is the error type returned by fallible ember operations. Use
// [errors.As] to retrieve it and inspect the Kind.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return "ember: " + e.msg + ": " + e.err.Error()
	}
	return "ember: " + e.msg
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.err }

// NewError returns an *Error with the given kind and message.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// WrapError returns an *Error with the given kind and message wrapping err.
func WrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, msg: msg, err: err}
}

// KindOf returns the Kind of err, or zero when err is not an ember error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func errInvalidArgf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, msg: fmt.Sprintf(format, args...)}
}

func errLogicf(format string, args ...any) *Error {
	return &Error{Kind: KindLogic, msg: fmt.Sprintf(format, args...)}
}

func errRuntimef(format string, args ...any) *Error {
	return &Error{Kind: KindRuntime, msg: fmt.Sprintf(format, args...)}
}

func errInternalf(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, msg: fmt.Sprintf(format, args...)}
}
