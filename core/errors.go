package core

import (
	"errors"
	"fmt"
)

// Caller-attributable denials. They are returned as they are, so callers can compare with errors.Is.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("post not found")
	ErrForbidden       = errors.New("not the owner of this post")
)

// Faults which are not attributable to the caller. Only these may be retried, and only outside of core.
var (
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrIdentityUnavailable = errors.New("identity unavailable")
)

// StoreFault wraps err, so it matches both ErrStoreUnavailable and err.
// It passes ErrNotFound and nil through.
func StoreFault(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return &fault{kind: ErrStoreUnavailable, op: op, err: err}
}

// IdentityFault wraps err, so it matches both ErrIdentityUnavailable and err.
func IdentityFault(op string, err error) error {
	if err == nil {
		return nil
	}
	return &fault{kind: ErrIdentityUnavailable, op: op, err: err}
}

type fault struct {
	kind error
	op   string
	err  error
}

func (f *fault) Error() string {
	return fmt.Sprintf("%s: %v: %v", f.op, f.kind, f.err)
}

func (f *fault) Is(target error) bool {
	return target == f.kind
}

func (f *fault) Unwrap() error {
	return f.err
}

// Invalid returns an error which matches ErrInvalidInput.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
