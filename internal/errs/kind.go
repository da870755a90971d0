package errs

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation did not succeed.
type Kind uint8

const (
	// KindUnknown is reported for errors that were not produced by this module.
	KindUnknown Kind = iota
	// KindValidation means input was rejected before any remote call was made.
	KindValidation
	// KindRemote means a backend call failed and nothing was left behind.
	KindRemote
	// KindPartial means a multi-step workflow failed after a side effect that
	// could not be compensated.
	KindPartial
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRemote:
		return "remote"
	case KindPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Error is the outcome of a failed operation: what was attempted, how it failed
// and the underlying cause.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E builds an *Error. A nil err yields nil.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
