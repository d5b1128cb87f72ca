package objectruntime

import "errors"

// Native abort codes surfaced to Move code by the dynamic-field and
// object-runtime natives.
const (
	ErrCodeFieldDoesNotExist = 1
	ErrCodeFieldTypeMismatch = 2
)

// ErrFieldDoesNotExist is returned when a requested child object is not
// present in the runtime, shared state, or on-demand fetch.
var ErrFieldDoesNotExist = errors.New("objectruntime: field does not exist")

// ErrFieldTypeMismatch is returned when a child object exists but its
// stored type tag does not match the type expected by the caller.
var ErrFieldTypeMismatch = errors.New("objectruntime: field type mismatch")

// ErrAlreadyDeleted is returned by remove/borrow operations against a
// child entry already in the deleted state.
var ErrAlreadyDeleted = errors.New("objectruntime: child object already deleted")
