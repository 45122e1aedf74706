// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package gitplugin provides the plugin that opens the repository named by
// the configuration.
package gitplugin

import (
	"context"
	"log/slog"
	"os/exec"

	"github.com/vernuntii/vernuntii/internal/events"
	"github.com/vernuntii/vernuntii/internal/git"
	"github.com/vernuntii/vernuntii/internal/plugin"
	"github.com/vernuntii/vernuntii/internal/plugins/configuration"
)

// Name identifies the plugin.
const Name = "git"

// Events are the channels of the plugin.
type Events struct {
	// OpenedRepository fires once with the repository of the run.
	OpenedRepository *events.Next[git.Repository]
}

// Git is the capability other plugins depend on.
type Git interface {
	Events() *Events
}

// Options configures the plugin.
type Options struct {
	// LookPath locates the git executable. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)
	// Runner executes git. Defaults to an ExecRunner on the located path.
	Runner git.Runner
	// Open opens the repository containing dir. Defaults to git.Open.
	Open func(ctx context.Context, runner git.Runner, dir string) (git.Repository, error)
}

// Plugin implements Git.
type Plugin struct {
	opts   Options
	events *Events
	runner git.Runner
}

var (
	_ Git                = (*Plugin)(nil)
	_ plugin.Initializer = (*Plugin)(nil)
	_ plugin.Executor    = (*Plugin)(nil)
)

// New creates the plugin.
func New(opts Options) *Plugin {
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	if opts.Open == nil {
		opts.Open = func(ctx context.Context, runner git.Runner, dir string) (git.Repository, error) {
			return git.Open(ctx, runner, dir)
		}
	}
	return &Plugin{
		opts: opts,
		events: &Events{
			OpenedRepository: events.NewNext[git.Repository]("git.opened-repository"),
		},
	}
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return Name
}

// Events returns the plugin channels.
func (p *Plugin) Events() *Events {
	return p.events
}

// Init locates the git executable.
func (p *Plugin) Init(_ context.Context) error {
	path, err := p.opts.LookPath("git")
	if err != nil {
		return git.ErrGitUnavailable(err)
	}
	p.runner = p.opts.Runner
	if p.runner == nil {
		p.runner = &git.ExecRunner{Path: path}
	}
	return nil
}

// OnExecution opens the repository once the configuration exists.
func (p *Plugin) OnExecution(ctx context.Context, run *plugin.Run) error {
	conf, err := plugin.First[configuration.Configurer](run.Registry).Await(ctx)
	if err != nil {
		return err
	}
	conf.Events().CreatedConfiguration.Subscribe(func(cfg *configuration.Config) error {
		repo, err := p.opts.Open(ctx, p.runner, cfg.GitDirectory)
		if err != nil {
			return err
		}
		slog.Debug("opened repository", "git_directory", repo.GitDirectory())
		return events.Fire(run.Bus, p.events.OpenedRepository, repo)
	}, events.Owner(Name))
	return nil
}
