// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package calculator provides the plugin that calculates the next version
// of a repository under a configuration.
package calculator

import (
	"context"
	"log/slog"

	"github.com/vernuntii/vernuntii/internal/git"
	"github.com/vernuntii/vernuntii/internal/plugins/configuration"
	"github.com/vernuntii/vernuntii/internal/versioning"
)

// Name identifies the plugin.
const Name = "calculator"

// Calculator is the capability other plugins depend on.
type Calculator interface {
	Calculate(ctx context.Context, repo git.Repository, cfg *configuration.Config) (*versioning.Result, error)
}

// Plugin implements Calculator.
type Plugin struct{}

var _ Calculator = (*Plugin)(nil)

// New creates the plugin.
func New() *Plugin {
	return &Plugin{}
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return Name
}

// Calculate applies the branch case of the active branch and calculates.
func (p *Plugin) Calculate(ctx context.Context, repo git.Repository, cfg *configuration.Config) (*versioning.Result, error) {
	branch, err := repo.ActiveBranch(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.VersioningOptions(branch.Name)
	if err != nil {
		return nil, err
	}

	result, err := versioning.Calculate(ctx, repo, opts)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "calculated next version",
		"version", result.Version.String(),
		"start_version", result.StartVersion.String(),
		"start_tag", result.StartTag,
		"branch", result.Branch,
		"height", result.Height,
		"commits", result.Commits,
		"preset", result.Preset)
	return result, nil
}
