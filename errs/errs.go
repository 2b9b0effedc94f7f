// Package errs implements the error kind model of the out-of-core mesher:
// invalid-argument and state errors are programmer errors that are never
// caught in normal code paths, out-of-range is reserved for stream
// operators on empty streams, and everything else (I/O, device,
// distribution) is caught at stage boundaries.
package errs

import (
	"github.com/pkg/errors"
)

// Kind classifies an error per the propagation policy in the error
// handling design.
type Kind int

const (
	// Invalid marks caller misuse (bad bucket size, non-power-of-two
	// cell side, over-long range).
	Invalid Kind = iota
	// OutOfRange marks an indexing error internal to stream operators.
	OutOfRange
	// State marks a precondition not met (e.g. numSplats before
	// computeBlobs).
	State
	// IO marks a failure from PLY readers/writers or temp files.
	IO
	// Device marks a failure from the GPU runtime.
	Device
	// Distribution marks a transport error from the message-passing
	// shell; always fatal.
	Distribution
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid argument"
	case OutOfRange:
		return "out of range"
	case State:
		return "state error"
	case IO:
		return "I/O failure"
	case Device:
		return "device failure"
	case Distribution:
		return "distribution failure"
	default:
		return "unknown error"
	}
}

type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.kind.String() + ": " + e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }
func (e *kindError) Cause() error  { return e.err }

// New creates a kinded error with a message.
func New(kind Kind, msg string) error {
	return &kindError{kind: kind, err: errors.New(msg)}
}

// Newf creates a kinded error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &kindError{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap attaches a kind and a message to an existing error, preserving
// its stack via github.com/pkg/errors.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: errors.Wrap(err, msg)}
}

// Is reports whether err (or anything it wraps) carries the given kind.
func Is(err error, kind Kind) bool {
	var ke *kindError
	for err != nil {
		if k, ok := err.(*kindError); ok {
			ke = k
			if ke.kind == kind {
				return true
			}
			err = ke.err
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// KindOf returns the kind carried by err, or false if err carries none.
func KindOf(err error) (Kind, bool) {
	for err != nil {
		if k, ok := err.(*kindError); ok {
			return k.kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}
