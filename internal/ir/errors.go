package ir

import (
	"errors"
	"fmt"
)

// PresenceError reports a read of an optional field that was never set.
//
// Presence violations are local contract violations: callers are expected to
// check Has* first, and a PresenceError indicates a malformed graph or a
// programming error at the call site.
type PresenceError struct {
	// Entity identifies the owner, e.g. `operator "conv1"` or `argument "strides"`.
	Entity string

	// Field is the unset field name (f, i, s, name, type, mem_id, version, mem_arena).
	Field string
}

func (e *PresenceError) Error() string {
	return fmt.Sprintf("%s: field %s is not set", e.Entity, e.Field)
}

// BoundsError reports an indexed access outside [0, Len).
type BoundsError struct {
	Entity     string
	Collection string
	Index      int
	Len        int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: %s index %d out of range [0,%d)", e.Entity, e.Collection, e.Index, e.Len)
}

// ShapeError reports a dims/data-type/buffer disagreement detected while
// constructing a tensor or boundary descriptor.
type ShapeError struct {
	Name    string
	Message string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("tensor %q: %s", e.Name, e.Message)
}

// IsPresenceError returns true if err is or wraps a *PresenceError.
func IsPresenceError(err error) bool {
	var pe *PresenceError
	return errors.As(err, &pe)
}

// IsBoundsError returns true if err is or wraps a *BoundsError.
func IsBoundsError(err error) bool {
	var be *BoundsError
	return errors.As(err, &be)
}

// IsShapeError returns true if err is or wraps a *ShapeError.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

func checkIndex(entity, collection string, idx, n int) error {
	if idx < 0 || idx >= n {
		return &BoundsError{Entity: entity, Collection: collection, Index: idx, Len: n}
	}
	return nil
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
