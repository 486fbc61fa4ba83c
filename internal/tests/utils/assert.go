// Package utils holds small assertion helpers shared by the test packages.
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NilError stops the test when err is not nil.
func NilError(t testing.TB, err error) {
	t.Helper()
	require.NoError(t, err)
}

// Equal reports a failure when got differs from want.
func Equal[T any](t testing.TB, got, want T) {
	t.Helper()
	assert.Equal(t, want, got)
}

// ErrorIs reports a failure when err does not wrap target.
func ErrorIs(t testing.TB, err, target error) {
	t.Helper()
	assert.ErrorIs(t, err, target)
}
