// Package errs defines the error taxonomy shared across the conversion
// pipeline. Every stage wraps its underlying cause with a Kind so the CLI
// layer can log a meaningful diagnostic while the public conversion
// operations still collapse everything into a plain boolean outcome.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the error categories the pipeline can produce.
type Kind int

const (
	InvalidPath Kind = iota
	IoFailure
	ArchiveFailure
	XMLMalformed
	SheetNotFound
	WriteFailed
	EncodingFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidPath:
		return "InvalidPath"
	case IoFailure:
		return "IoFailure"
	case ArchiveFailure:
		return "ArchiveFailure"
	case XMLMalformed:
		return "XMLMalformed"
	case SheetNotFound:
		return "SheetNotFound"
	case WriteFailed:
		return "WriteFailed"
	case EncodingFailure:
		return "EncodingFailure"
	default:
		return "Unknown"
	}
}

// Error carries a Kind plus a wrapped cause, so the chain survives through
// pkg/errors.Cause while still supporting kind-based handling at the top.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Cause lets pkg/errors.Cause walk past the Kind wrapper to the root cause.
func (e *Error) Cause() error { return e.cause }

// Wrap attaches a Kind to cause. If cause is nil, Wrap returns nil so callers
// can write `return errs.Wrap(errs.IoFailure, err)` unconditionally.
func Wrap(kind Kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, cause: errors.WithStack(cause)}
}

// New builds a bare error of the given kind from a message, with no
// underlying cause.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, cause: errors.New(msg)}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

// KindOf extracts the Kind from err, returning (kind, true) if err (or one of
// its wrapped causes) is an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	for err != nil {
		if asErr, ok := err.(*Error); ok {
			e = asErr
			break
		}
		cause := errors.Unwrap(err)
		if cause == nil {
			break
		}
		err = cause
	}
	if e == nil {
		return 0, false
	}
	return e.Kind, true
}
