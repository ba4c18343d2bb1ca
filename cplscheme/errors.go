package cplscheme

import (
	"errors"
	"fmt"
)

// Kind classifies scheme errors.
type Kind int

// The error kinds surfaced at public operation boundaries.
const (
	// KindConfiguration marks an invalid construction-time setup.
	KindConfiguration Kind = iota + 1

	// KindPrecondition marks an operation called in a state that forbids
	// it, e.g. Advance before Initialize.
	KindPrecondition

	// KindNumericMismatch marks a disagreement about locally computed
	// timestep lengths that would desynchronize participants.
	KindNumericMismatch

	// KindCommunication marks a transport-level failure. A broken channel
	// mid-window leaves the run unrecoverable.
	KindCommunication
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "Configuration"
	case KindPrecondition:
		return "Precondition"
	case KindNumericMismatch:
		return "NumericMismatch"
	case KindCommunication:
		return "Communication"
	default:
		return "Unknown"
	}
}

// An Error is a classified scheme error.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s violation: %s: %s",
			e.Op, e.Kind, e.Msg, e.Err)
	}

	return fmt.Sprintf("%s: %s violation: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind tells if err is a scheme error of the given kind.
func IsKind(err error, k Kind) bool {
	var schemeErr *Error
	if errors.As(err, &schemeErr) {
		return schemeErr.Kind == k
	}

	return false
}

func preconditionErr(op, format string, args ...any) *Error {
	return &Error{
		Kind: KindPrecondition,
		Op:   op,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func communicationErr(op string, err error) *Error {
	return &Error{
		Kind: KindCommunication,
		Op:   op,
		Msg:  "transport failed",
		Err:  err,
	}
}
