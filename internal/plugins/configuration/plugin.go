// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package configuration provides the plugin that loads vernuntii.yml,
// validates it against its JSON schema and resolves branch cases.
package configuration

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vernuntii/vernuntii/internal/events"
	"github.com/vernuntii/vernuntii/internal/plugin"
	"github.com/vernuntii/vernuntii/internal/plugins/commandline"
)

// Name identifies the plugin.
const Name = "configuration"

// Request is the payload of CreateConfiguration.
type Request struct{}

// Events are the channels of the plugin.
type Events struct {
	// CreateConfiguration asks the plugin to load the configuration.
	CreateConfiguration *events.Next[Request]
	// CreatedConfiguration fires once with the loaded configuration.
	CreatedConfiguration *events.Next[*Config]
}

// Configurer is the capability other plugins depend on.
type Configurer interface {
	Events() *Events
	// ConfigPath is the config path given on the command line or the
	// working directory.
	ConfigPath() string
}

// Options configures the plugin.
type Options struct {
	// WorkDir is searched when no config path is given. Empty means the
	// process working directory.
	WorkDir string
}

// Plugin implements Configurer.
type Plugin struct {
	opts   Options
	events *Events
	path   string
	flags  *pflag.FlagSet
}

var (
	_ Configurer      = (*Plugin)(nil)
	_ plugin.Executor = (*Plugin)(nil)
)

// New creates the plugin.
func New(opts Options) *Plugin {
	return &Plugin{
		opts: opts,
		events: &Events{
			CreateConfiguration:  events.NewNext[Request]("configuration.create-configuration"),
			CreatedConfiguration: events.NewNext[*Config]("configuration.created-configuration"),
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

// ConfigPath returns the path configuration is loaded from.
func (p *Plugin) ConfigPath() string {
	if p.path != "" {
		return p.path
	}
	if p.opts.WorkDir != "" {
		return p.opts.WorkDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// OnExecution adds --config-path and the config command, and loads the
// configuration when asked to.
func (p *Plugin) OnExecution(ctx context.Context, run *plugin.Run) error {
	cl, err := plugin.First[commandline.CommandLine](run.Registry).Await(ctx)
	if err != nil {
		return err
	}

	root := cl.RootCommand()
	root.PersistentFlags().StringVarP(&p.path, "config-path", "c", "",
		"configuration file or directory containing "+FileNames[0])

	configCmd := &cobra.Command{Use: "config", Short: "Inspect the configuration", Args: cobra.NoArgs}
	schemaCmd := &cobra.Command{Use: "schema", Short: "Print the JSON schema of the configuration file", Args: cobra.NoArgs}
	configCmd.AddCommand(schemaCmd)
	root.AddCommand(configCmd)
	cl.Handle(schemaCmd, func(context.Context, []string) (int, error) {
		data, err := GenerateSchema()
		if err != nil {
			return 0, err
		}
		_, err = fmt.Fprintln(schemaCmd.OutOrStdout(), string(data))
		return 0, err
	})

	cl.Events().ParsedCommandLineArgs.Subscribe(func(r *commandline.ParseResult) error {
		p.flags = r.Command.Flags()
		return nil
	}, events.Unschedulable(), events.Owner(Name))

	p.events.CreateConfiguration.Subscribe(func(Request) error {
		cfg, err := Load(p.ConfigPath(), p.flags)
		if err != nil {
			return err
		}
		slog.Debug("loaded configuration", "path", cfg.Path, "git_directory", cfg.GitDirectory)
		return events.Fire(run.Bus, p.events.CreatedConfiguration, cfg)
	}, events.Owner(Name))
	return nil
}
