// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package app

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vernuntii/vernuntii/internal/git"
	"github.com/vernuntii/vernuntii/internal/plugins/versioncache"
)

// Deps contains injectable dependencies for a run.
// All fields with nil values will use their default implementations.
type Deps struct {
	// LookPath locates the git executable.
	// Default: exec.LookPath
	LookPath func(file string) (string, error)

	// OpenRepository opens the repository containing dir.
	// Default: git.Open
	OpenRepository func(ctx context.Context, runner git.Runner, dir string) (git.Repository, error)

	// CacheDir returns the version cache directory.
	// Default: versioncache.DefaultDir
	CacheDir func() (string, error)

	// WorkDir is searched for a configuration file.
	// Default: the process working directory
	WorkDir string

	// Stdout receives the presentation and help output.
	// Default: os.Stdout
	Stdout io.Writer

	// Stderr receives logs and errors.
	// Default: os.Stderr
	Stderr io.Writer

	// Now is the clock of the version cache and load-time logging.
	// Default: time.Now
	Now func() time.Time

	// Registerer receives the event bus metrics. Nil skips registration.
	Registerer prometheus.Registerer
}

func (d Deps) withDefaults() Deps {
	if d.LookPath == nil {
		d.LookPath = exec.LookPath
	}
	if d.OpenRepository == nil {
		d.OpenRepository = func(ctx context.Context, runner git.Runner, dir string) (git.Repository, error) {
			return git.Open(ctx, runner, dir)
		}
	}
	if d.CacheDir == nil {
		d.CacheDir = versioncache.DefaultDir
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}
