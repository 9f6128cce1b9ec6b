package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/kohei-dev/student-management-api/pkg/errors"
)

func TestNewIDPositive(t *testing.T) {
	for _, raw := range []int64{1, 2, 999999} {
		id, err := NewID(raw)
		require.NoError(t, err)
		value, assigned := id.Value()
		assert.True(t, assigned)
		assert.Equal(t, raw, value)
		assert.False(t, id.IsAbsent())
	}
}

func TestNewIDRejectsNonPositive(t *testing.T) {
	for _, raw := range []int64{0, -1, -100} {
		_, err := NewID(raw)
		require.Error(t, err)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrInvalidArgument.Code, appErr.Code)
	}
}

func TestNullableID(t *testing.T) {
	id, err := NullableID(nil)
	require.NoError(t, err)
	assert.True(t, id.IsAbsent())
	assert.Equal(t, "", id.String())

	raw := int64(7)
	id, err = NullableID(&raw)
	require.NoError(t, err)
	assert.False(t, id.IsAbsent())
	assert.Equal(t, "7", id.String())

	bad := int64(0)
	_, err = NullableID(&bad)
	assert.Error(t, err)
}

func TestIDEquality(t *testing.T) {
	a, err := NewID(5)
	require.NoError(t, err)
	b, err := NewID(5)
	require.NoError(t, err)
	c, err := NewID(6)
	require.NoError(t, err)

	assert.True(t, a == b)
	assert.False(t, a == c)
	assert.True(t, ID{} == ID{})
	assert.False(t, a == ID{})

	// Comparable value type usable as a map key.
	seen := map[ID]int{a: 1}
	assert.Equal(t, 1, seen[b])
}
