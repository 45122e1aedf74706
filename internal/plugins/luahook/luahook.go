// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package luahook provides the plugin that lets a sandboxed Lua script
// adjust the calculated version.
package luahook

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/vernuntii/vernuntii/internal/events"
	"github.com/vernuntii/vernuntii/internal/plugin"
	"github.com/vernuntii/vernuntii/internal/plugins/configuration"
	"github.com/vernuntii/vernuntii/internal/plugins/nextversion"
	"github.com/vernuntii/vernuntii/internal/versioning"
)

// Name identifies the plugin.
const Name = "luahook"

// Plugin loads hook.script and applies it to every calculated version.
type Plugin struct {
	sandbox *Sandbox
	script  *Script
}

var _ plugin.Executor = (*Plugin)(nil)

// New creates the plugin.
func New() *Plugin {
	return &Plugin{sandbox: NewSandbox()}
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return Name
}

// OnExecution loads the script with the configuration and subscribes to
// CalculatedNextVersion.
func (p *Plugin) OnExecution(ctx context.Context, run *plugin.Run) error {
	conf, err := plugin.First[configuration.Configurer](run.Registry).Await(ctx)
	if err != nil {
		return err
	}
	nv, err := plugin.First[nextversion.NextVersion](run.Registry).Await(ctx)
	if err != nil {
		return err
	}

	conf.Events().CreatedConfiguration.Subscribe(func(cfg *configuration.Config) error {
		if cfg.Hook.Script == "" {
			return nil
		}
		script, err := LoadScript(ctx, p.sandbox, scriptPath(cfg))
		if err != nil {
			return err
		}
		p.script = script
		slog.DebugContext(ctx, "loaded hook script", "script", script.path)
		return nil
	}, events.Unschedulable(), events.Owner(Name))

	nv.Events().CalculatedNextVersion.Subscribe(func(r *versioning.Result) error {
		if p.script == nil {
			return nil
		}
		before := r.Version.String()
		if err := p.script.Apply(ctx, r); err != nil {
			return err
		}
		if after := r.Version.String(); after != before {
			slog.InfoContext(ctx, "hook replaced next version", "from", before, "to", after)
		}
		return nil
	}, events.Unschedulable(), events.Owner(Name))
	return nil
}

// scriptPath resolves a relative script against the configuration file.
func scriptPath(cfg *configuration.Config) string {
	if filepath.IsAbs(cfg.Hook.Script) || cfg.Path == "" {
		return cfg.Hook.Script
	}
	return filepath.Join(filepath.Dir(cfg.Path), cfg.Hook.Script)
}
