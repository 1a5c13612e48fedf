package hevcps

import (
	"errors"
	"fmt"
)

// Kind classifies a parsing failure, per spec.md section 7.
type Kind int

const (
	// KindTruncated means the reader reported fewer bits remain than the
	// syntax demands. Fatal for the current NAL; registry state is
	// retained unchanged.
	KindTruncated Kind = iota
	// KindInvalidData means an explicit constraint failed (id out of
	// range, a value exceeds its legal maximum, a reserved bit had the
	// wrong value, an inter-RPS prediction referenced a non-existent
	// RPS, or a dependent parameter set was missing).
	KindInvalidData
	// KindOutOfMemory means a size computed from the bitstream exceeded
	// what this implementation is willing to allocate.
	KindOutOfMemory
	// KindWarning is a non-fatal anomaly. It is logged and, when
	// Context.ErrRecognition has ErrRecognitionExplode set, escalated to
	// KindInvalidData.
	KindWarning
)

func (k Kind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindInvalidData:
		return "invalid data"
	case KindOutOfMemory:
		return "out of memory"
	case KindWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Sentinel errors for use with errors.Is.
var (
	ErrTruncated   = errors.New("hevcps: truncated bitstream")
	ErrInvalidData = errors.New("hevcps: invalid data")
	ErrOutOfMemory = errors.New("hevcps: out of memory")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindTruncated:
		return ErrTruncated
	case KindOutOfMemory:
		return ErrOutOfMemory
	default:
		return ErrInvalidData
	}
}

// Error is the error type returned by every parsing function in this
// package. Elem names the syntax element being read or validated when the
// failure occurred, for diagnostics.
type Error struct {
	Kind Kind
	Elem string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hevcps: %s: %s: %v", e.Elem, e.Kind, e.Err)
	}
	return fmt.Sprintf("hevcps: %s: %s", e.Elem, e.Kind)
}

func (e *Error) Unwrap() error {
	return sentinelFor(e.Kind)
}

func newErr(kind Kind, elem string, err error) *Error {
	return &Error{Kind: kind, Elem: elem, Err: err}
}

func truncated(elem string, err error) *Error {
	return newErr(KindTruncated, elem, err)
}

func invalid(elem string, format string, args ...any) *Error {
	return newErr(KindInvalidData, elem, fmt.Errorf(format, args...))
}

func oom(elem string, format string, args ...any) *Error {
	return newErr(KindOutOfMemory, elem, fmt.Errorf(format, args...))
}
