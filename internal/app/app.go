// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package app assembles the plugin host of the vernuntii command.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vernuntii/vernuntii/internal/events"
	"github.com/vernuntii/vernuntii/internal/logging"
	"github.com/vernuntii/vernuntii/internal/plugin"
	"github.com/vernuntii/vernuntii/internal/plugins/calculator"
	"github.com/vernuntii/vernuntii/internal/plugins/commandline"
	"github.com/vernuntii/vernuntii/internal/plugins/configuration"
	"github.com/vernuntii/vernuntii/internal/plugins/gitplugin"
	"github.com/vernuntii/vernuntii/internal/plugins/luahook"
	"github.com/vernuntii/vernuntii/internal/plugins/nextversion"
	"github.com/vernuntii/vernuntii/internal/plugins/versioncache"
	"github.com/vernuntii/vernuntii/internal/versioning"
	"github.com/vernuntii/vernuntii/pkg/errutil"
)

// Name is the name of the root command.
const Name = "vernuntii"

// BuildInfo describes the binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}

// NewHost registers the standard plugin set with a new host.
func NewHost(ctx context.Context, info BuildInfo, deps Deps) *plugin.Host {
	deps = deps.withDefaults()

	h := plugin.NewHost(
		plugin.WithExitCode(configuration.CodeInvalidConfiguration, errutil.ExitInvalidConfiguration),
		plugin.WithExitCode(versioning.CodeUnknownPreset, errutil.ExitInvalidConfiguration),
		plugin.WithExitCode(versioning.CodeUnknownIncrementMode, errutil.ExitInvalidConfiguration),
		plugin.WithExitCode(versioning.CodeInvalidVersion, errutil.ExitInvalidConfiguration),
	)

	plugin.Add[commandline.CommandLine](ctx, h, commandline.New(commandline.Options{
		Use:     Name,
		Version: info.String(),
		Out:     deps.Stdout,
		Err:     deps.Stderr,
	}))
	plugin.Add[configuration.Configurer](ctx, h, configuration.New(configuration.Options{
		WorkDir: deps.WorkDir,
	}))
	plugin.Add[gitplugin.Git](ctx, h, gitplugin.New(gitplugin.Options{
		LookPath: deps.LookPath,
		Open:     deps.OpenRepository,
	}))
	plugin.Add[versioncache.Checker](ctx, h, versioncache.New(versioncache.Options{
		Dir: deps.CacheDir,
		Now: deps.Now,
	}))
	plugin.Add[calculator.Calculator](ctx, h, calculator.New())
	plugin.Add[nextversion.NextVersion](ctx, h, nextversion.New(nextversion.Options{
		Out: deps.Stdout,
		Now: deps.Now,
	}))
	plugin.Add[plugin.Plugin](ctx, h, luahook.New())
	return h
}

// Run executes one command run and returns the process exit code. Errors
// are logged to deps.Stderr.
func Run(ctx context.Context, args []string, info BuildInfo, deps Deps) int {
	deps = deps.withDefaults()
	logging.SetDefault(logging.Options{
		Service: Name,
		Version: info.Version,
		Writer:  deps.Stderr,
	})
	if deps.Registerer != nil {
		events.RegisterMetrics(deps.Registerer)
	}

	code, err := NewHost(ctx, info, deps).Run(ctx, args)
	if err != nil {
		// The command line plugin replaces the default logger once the
		// verbosity is parsed.
		errutil.LogError(slog.Default(), "run failed", err)
	}
	return code
}
