// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package git

import (
	"strings"

	"github.com/samber/oops"
)

// Error codes for git operations.
const (
	CodeNotRepository  = "GIT_NOT_REPOSITORY"
	CodeNoHead         = "GIT_NO_HEAD"
	CodeCommandFailed  = "GIT_COMMAND_FAILED"
	CodeGitUnavailable = "GIT_UNAVAILABLE"
)

// ErrNotRepository creates an error for a directory outside any repository.
func ErrNotRepository(dir string, cause error) error {
	return oops.In("git").
		Code(CodeNotRepository).
		With("directory", dir).
		Hint("point --config-path or gitDirectory at a directory inside a git repository").
		Wrapf(cause, "%s is not a git repository", dir)
}

// ErrNoHead creates an error for a repository without commits.
func ErrNoHead(gitDir string) error {
	return oops.In("git").
		Code(CodeNoHead).
		With("git_directory", gitDir).
		Errorf("repository has no commits")
}

// ErrCommandFailed wraps a failed git invocation.
func ErrCommandFailed(args []string, stderr string, cause error) error {
	return oops.In("git").
		Code(CodeCommandFailed).
		With("args", strings.Join(args, " ")).
		With("stderr", strings.TrimSpace(stderr)).
		Wrapf(cause, "git %s", strings.Join(args, " "))
}

// ErrGitUnavailable creates an error for a missing git executable.
func ErrGitUnavailable(cause error) error {
	return oops.In("git").
		Code(CodeGitUnavailable).
		Hint("install git and make sure it is on PATH").
		Wrapf(cause, "git executable not found")
}
