// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err is an oops error with the given code.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, oopsErr.Code())
}

// AssertExitCode asserts that codes maps err to the process exit code want.
func AssertExitCode(t *testing.T, err error, codes ExitCodes, want int) {
	t.Helper()
	got := ExitCode(err, codes)
	if oopsErr, ok := oops.AsOops(err); ok {
		assert.Equal(t, want, got, "exit code for %q", oopsErr.Code())
		return
	}
	assert.Equal(t, want, got, "exit code for %T", err)
}

// AssertErrorContext asserts that err is an oops error with the given context key/value.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	ctx := oopsErr.Context()
	assert.Contains(t, ctx, key)
	assert.Equal(t, value, ctx[key])
}
