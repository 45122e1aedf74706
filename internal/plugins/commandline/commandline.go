// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package commandline provides the plugin that owns the cobra command tree.
// Other plugins add flags and sub-commands during OnExecution; the plugin
// parses the arguments when the host fires ParseCommandLineArgs and runs the
// selected command handler when it fires InvokeCommand.
package commandline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vernuntii/vernuntii/internal/events"
	"github.com/vernuntii/vernuntii/internal/logging"
	"github.com/vernuntii/vernuntii/internal/plugin"
)

// Name identifies the plugin.
const Name = "commandline"

// Handler runs a command and returns its exit code.
type Handler func(ctx context.Context, args []string) (int, error)

// ParseResult describes the parsed command line.
type ParseResult struct {
	// Command is the selected command.
	Command *cobra.Command
	// Args are the positional arguments after flag parsing.
	Args []string
	// Builtin is set when --help or --version replaces the command handler.
	Builtin bool
}

// IsRoot reports whether the root command was selected.
func (r *ParseResult) IsRoot() bool {
	return !r.Command.HasParent()
}

// Events are the channels fired by the plugin.
type Events struct {
	// ParsedCommandLineArgs fires once after the arguments were parsed and
	// validated.
	ParsedCommandLineArgs *events.Next[*ParseResult]
}

// CommandLine is the capability other plugins depend on.
type CommandLine interface {
	RootCommand() *cobra.Command
	// SetRootHandler sets the handler of the root command.
	SetRootHandler(h Handler)
	// Handle sets the handler of cmd, which must be part of the tree.
	Handle(cmd *cobra.Command, h Handler)
	Events() *Events
}

// Options configures the plugin.
type Options struct {
	// Use is the name of the root command.
	Use     string
	Version string
	Out     io.Writer
	Err     io.Writer
	// Level receives the verbosity selected on the command line.
	Level *slog.LevelVar
}

// Plugin implements CommandLine.
type Plugin struct {
	opts      Options
	root      *cobra.Command
	handlers  map[*cobra.Command]Handler
	events    *Events
	verbosity string
	logFormat string
	ctx       context.Context
	parsed    *ParseResult
}

var (
	_ CommandLine     = (*Plugin)(nil)
	_ plugin.Executor = (*Plugin)(nil)
)

// New creates the plugin and its root command.
func New(opts Options) *Plugin {
	if opts.Use == "" {
		opts.Use = "vernuntii"
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Level == nil {
		opts.Level = new(slog.LevelVar)
	}

	p := &Plugin{
		opts:     opts,
		handlers: make(map[*cobra.Command]Handler),
		events: &Events{
			ParsedCommandLineArgs: events.NewNext[*ParseResult]("commandline.parsed-command-line-args"),
		},
	}

	root := &cobra.Command{
		Use:           opts.Use,
		Short:         "Calculate the next semantic version of a git repository",
		Version:       opts.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.PersistentFlags().StringVarP(&p.verbosity, "verbosity", "v", "",
		"log level: verbose, debug, information, warning, error or fatal")
	root.PersistentFlags().StringVar(&p.logFormat, "log-format", "text", "log format: text or json")
	p.root = root
	return p
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return Name
}

// RootCommand returns the root command.
func (p *Plugin) RootCommand() *cobra.Command {
	return p.root
}

// SetRootHandler sets the handler of the root command.
func (p *Plugin) SetRootHandler(h Handler) {
	p.Handle(p.root, h)
}

// Handle sets the handler of cmd. A handled command counts as runnable
// so its help shows the usage line.
func (p *Plugin) Handle(cmd *cobra.Command, h Handler) {
	p.handlers[cmd] = h
	if cmd.Run == nil && cmd.RunE == nil {
		cmd.Run = func(*cobra.Command, []string) {}
	}
}

// Events returns the plugin channels.
func (p *Plugin) Events() *Events {
	return p.events
}

// OnExecution subscribes to the parse and invoke lifecycle steps.
func (p *Plugin) OnExecution(ctx context.Context, run *plugin.Run) error {
	p.ctx = ctx
	run.Lifecycle.ParseCommandLineArgs.Subscribe(func(args []string) error {
		return p.parse(run.Bus, args)
	}, events.Owner(Name))
	run.Lifecycle.InvokeCommand.Subscribe(p.invoke, events.Owner(Name))
	return nil
}

func (p *Plugin) parse(bus *events.Bus, args []string) error {
	cmd, rest, err := p.root.Find(args)
	if err != nil {
		return ErrInvalidArguments(p.root.Name(), err)
	}
	cmd.InitDefaultHelpFlag()
	cmd.InitDefaultVersionFlag()
	if err := cmd.ParseFlags(rest); err != nil {
		return ErrInvalidArguments(cmd.CommandPath(), err)
	}

	level, err := logging.ParseLevel(p.verbosity)
	if err != nil {
		return ErrInvalidArguments(cmd.CommandPath(), err)
	}
	p.opts.Level.Set(level)
	logging.SetDefault(logging.Options{
		Service: p.root.Name(),
		Version: p.opts.Version,
		Format:  p.logFormat,
		Level:   p.opts.Level,
		Writer:  p.opts.Err,
	})

	result := &ParseResult{
		Command: cmd,
		Args:    cmd.Flags().Args(),
		Builtin: flagSet(cmd, "help") || flagSet(cmd, "version"),
	}
	if !result.Builtin {
		if err := cmd.ValidateArgs(result.Args); err != nil {
			return ErrInvalidArguments(cmd.CommandPath(), err)
		}
		if err := cmd.ValidateRequiredFlags(); err != nil {
			return ErrInvalidArguments(cmd.CommandPath(), err)
		}
		if err := cmd.ValidateFlagGroups(); err != nil {
			return ErrInvalidArguments(cmd.CommandPath(), err)
		}
	}

	slog.Debug("parsed command line", "command", cmd.CommandPath(), "args", result.Args)
	p.parsed = result
	return events.Fire(bus, p.events.ParsedCommandLineArgs, result)
}

func (p *Plugin) invoke(inv *plugin.Invocation) error {
	if p.parsed == nil {
		return nil
	}
	cmd := p.parsed.Command

	switch {
	case flagSet(cmd, "help"):
		inv.SetExitCode(0)
		return help(cmd)
	case flagSet(cmd, "version"):
		inv.SetExitCode(0)
		_, err := fmt.Fprintln(p.opts.Out, p.root.Version)
		return err
	}

	h, ok := p.handlers[cmd]
	if !ok {
		inv.SetExitCode(0)
		return help(cmd)
	}
	code, err := h(p.ctx, p.parsed.Args)
	if err != nil {
		return err
	}
	inv.SetExitCode(code)
	return nil
}

// help prints the help of cmd. Cobra leaves out the usage of commands
// that are neither runnable nor have sub-commands, so it is added here.
func help(cmd *cobra.Command) error {
	if err := cmd.Help(); err != nil {
		return err
	}
	if cmd.Runnable() || cmd.HasSubCommands() {
		return nil
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
	return err
}

func flagSet(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed && f.Value.String() == "true"
}
