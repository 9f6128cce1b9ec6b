package domain

import (
	"strconv"

	appErrors "github.com/kohei-dev/student-management-api/pkg/errors"
)

// ID is the identity of a persisted record. The zero value is "unassigned",
// the state of an entity before its first insert. An assigned ID is always a
// positive integer; construction rejects anything else so a bad identity can
// never leak into the domain.
//
// ID is a comparable value type: two IDs are equal when their underlying
// optional values are equal, including both being unassigned.
type ID struct {
	value    int64
	assigned bool
}

// NewID wraps a raw identity value. Values below 1 fail with InvalidArgument.
func NewID(value int64) (ID, error) {
	if value < 1 {
		return ID{}, appErrors.Clone(appErrors.ErrInvalidArgument, "id must be a positive integer: "+strconv.FormatInt(value, 10))
	}
	return ID{value: value, assigned: true}, nil
}

// NullableID wraps an optional raw identity. A nil pointer yields the
// unassigned ID; a non-nil pointer is validated like NewID.
func NullableID(value *int64) (ID, error) {
	if value == nil {
		return ID{}, nil
	}
	return NewID(*value)
}

// IsAbsent reports whether the ID has not been assigned yet.
func (id ID) IsAbsent() bool {
	return !id.assigned
}

// Value returns the underlying identity. It is only meaningful when the
// second return value is true.
func (id ID) Value() (int64, bool) {
	return id.value, id.assigned
}

// String renders the identity, or the empty string when unassigned.
func (id ID) String() string {
	if !id.assigned {
		return ""
	}
	return strconv.FormatInt(id.value, 10)
}
