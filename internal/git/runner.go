// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// Runner executes git with the given arguments in dir and returns stdout.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner runs the git executable.
type ExecRunner struct {
	// Path is the git executable. Empty means "git" from PATH.
	Path string
	// Retries bounds the attempts made while the index is locked.
	Retries uint64
	// Backoff is the base delay between attempts.
	Backoff time.Duration
}

var _ Runner = (*ExecRunner)(nil)

// Run executes git. Invocations that fail because another process holds
// index.lock are retried with exponential backoff.
func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	path := r.Path
	if path == "" {
		path = "git"
	}
	retries := r.Retries
	if retries == 0 {
		retries = 4
	}
	base := r.Backoff
	if base == 0 {
		base = 50 * time.Millisecond
	}

	var out string
	backoff := retry.WithMaxRetries(retries, retry.NewExponential(base))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, path, args...) //nolint:gosec // args are built by this package
		cmd.Dir = dir

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			failure := ErrCommandFailed(args, stderr.String(), err)
			if strings.Contains(stderr.String(), "index.lock") {
				return retry.RetryableError(failure)
			}
			return failure
		}
		out = stdout.String()
		return nil
	})
	if err != nil {
		return "", err //nolint:wrapcheck // already an oops error
	}
	return out, nil
}
