// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package nextversion provides the plugin behind the root command: it
// requests configuration and repository, consults the version cache,
// calculates and presents the next version.
package nextversion

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"

	"github.com/vernuntii/vernuntii/internal/events"
	"github.com/vernuntii/vernuntii/internal/git"
	"github.com/vernuntii/vernuntii/internal/plugin"
	"github.com/vernuntii/vernuntii/internal/plugins/calculator"
	"github.com/vernuntii/vernuntii/internal/plugins/commandline"
	"github.com/vernuntii/vernuntii/internal/plugins/configuration"
	"github.com/vernuntii/vernuntii/internal/plugins/gitplugin"
	"github.com/vernuntii/vernuntii/internal/plugins/versioncache"
	"github.com/vernuntii/vernuntii/internal/presentation"
	"github.com/vernuntii/vernuntii/internal/versioning"
	"github.com/vernuntii/vernuntii/pkg/errutil"
)

// Name identifies the plugin.
const Name = "nextversion"

// CodeIncomplete is returned when the root command runs without the
// configuration or repository it requested.
const CodeIncomplete = "NEXT_VERSION_INCOMPLETE"

// Events are the channels of the plugin.
type Events struct {
	// CalculatedNextVersion fires with every calculated or cached result
	// before it is presented. Unschedulable handlers may replace
	// Result.Version.
	CalculatedNextVersion *events.Every[*versioning.Result]
}

// NextVersion is the capability other plugins depend on.
type NextVersion interface {
	Events() *Events
}

// Options configures the plugin.
type Options struct {
	// Out receives the presentation. Defaults to os.Stdout.
	Out io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

type flags struct {
	kind           string
	parts          []string
	view           string
	emptyCaches    bool
	duplicateFails bool
	overrideMode   string
}

// Plugin implements NextVersion.
type Plugin struct {
	opts   Options
	events *Events
	flags  flags

	bus        *events.Bus
	checker    *plugin.Lazy[versioncache.Checker]
	calculator *plugin.Lazy[calculator.Calculator]

	started time.Time
	cfg     *configuration.Config
	repo    git.Repository
	status  *versioncache.Status
}

var (
	_ NextVersion     = (*Plugin)(nil)
	_ plugin.Executor = (*Plugin)(nil)
)

// New creates the plugin.
func New(opts Options) *Plugin {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Plugin{
		opts: opts,
		events: &Events{
			CalculatedNextVersion: events.NewEvery[*versioning.Result]("nextversion.calculated-next-version"),
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

// OnExecution adds the root flags and handler and chains the requests for
// configuration, repository and cache status.
func (p *Plugin) OnExecution(ctx context.Context, run *plugin.Run) error {
	cl, err := plugin.First[commandline.CommandLine](run.Registry).Await(ctx)
	if err != nil {
		return err
	}
	conf, err := plugin.First[configuration.Configurer](run.Registry).Await(ctx)
	if err != nil {
		return err
	}
	g, err := plugin.First[gitplugin.Git](run.Registry).Await(ctx)
	if err != nil {
		return err
	}
	p.bus = run.Bus
	p.checker = plugin.First[versioncache.Checker](run.Registry)
	p.calculator = plugin.First[calculator.Calculator](run.Registry)

	root := cl.RootCommand()
	fs := root.Flags()
	fs.StringVar(&p.flags.kind, "presentation-kind", string(presentation.KindValue), "presentation kind: value or complex")
	fs.StringSliceVar(&p.flags.parts, "presentation-parts", []string{string(presentation.PartVersion)},
		"parts to present: Major, Minor, Patch, VersionCore, PreRelease, Build, Version, Branch or CommitSha")
	fs.StringVar(&p.flags.view, "presentation-view", string(presentation.ViewText), "presentation view: text, json or yaml")
	fs.BoolVar(&p.flags.emptyCaches, "empty-caches", false, "delete cached versions before calculating")
	fs.StringVar(&p.flags.overrideMode, "override-versioning-mode", "", "versioning preset overriding the configuration")
	fs.BoolVar(&p.flags.duplicateFails, "duplicate-version-fails", false,
		"exit with code 2 when the next version already exists as tag")
	cl.SetRootHandler(p.handle)

	cl.Events().ParsedCommandLineArgs.Subscribe(func(r *commandline.ParseResult) error {
		if !r.IsRoot() || r.Builtin {
			return nil
		}
		p.started = p.opts.Now()
		if _, err := p.presentationOptions(); err != nil {
			return err
		}
		return events.Fire(run.Bus, conf.Events().CreateConfiguration, configuration.Request{})
	}, events.Owner(Name))

	conf.Events().CreatedConfiguration.Subscribe(func(cfg *configuration.Config) error {
		p.cfg = cfg
		return nil
	}, events.Unschedulable(), events.Owner(Name))

	g.Events().OpenedRepository.Subscribe(func(repo git.Repository) error {
		p.repo = repo
		checker, ok := p.checker.Get()
		if !ok {
			return nil
		}
		return events.Fire(run.Bus, checker.Events().CheckVersionCache, versioncache.Check{
			Repository:  repo,
			Config:      p.cfg,
			EmptyCaches: p.flags.emptyCaches,
		})
	}, events.Owner(Name))

	if checker, ok := p.checker.Get(); ok {
		checker.Events().CheckedVersionCache.Subscribe(func(status *versioncache.Status) error {
			p.status = status
			return nil
		}, events.Unschedulable(), events.Owner(Name))
	}
	return nil
}

func (p *Plugin) presentationOptions() (presentation.Options, error) {
	kind, err := presentation.ParseKind(p.flags.kind)
	if err != nil {
		return presentation.Options{}, err
	}
	parts, err := presentation.ParseParts(p.flags.parts)
	if err != nil {
		return presentation.Options{}, err
	}
	view, err := presentation.ParseView(p.flags.view)
	if err != nil {
		return presentation.Options{}, err
	}
	opts := presentation.Options{Kind: kind, Parts: parts, View: view}
	return opts, opts.Validate()
}

func (p *Plugin) handle(ctx context.Context, _ []string) (int, error) {
	opts, err := p.presentationOptions()
	if err != nil {
		return errutil.ExitFailure, err
	}
	if p.cfg == nil || p.repo == nil {
		return errutil.ExitFailure, oops.In("nextversion").
			Code(CodeIncomplete).
			Errorf("configuration or repository was not created")
	}

	result, cached, err := p.next(ctx)
	if err != nil {
		return errutil.ExitFailure, err
	}

	if err := events.Fire(p.bus, p.events.CalculatedNextVersion, result); err != nil {
		return errutil.ExitFailure, err
	}

	if p.flags.duplicateFails {
		tags, err := p.repo.Tags(ctx)
		if err != nil {
			return errutil.ExitFailure, err
		}
		if versioning.VersionExists(tags, result.Version) {
			slog.ErrorContext(ctx, "next version already exists as tag", "version", result.Version.String())
			return errutil.ExitDuplicateVersion, nil
		}
	}

	if err := presentation.Present(p.opts.Out, result, opts); err != nil {
		return errutil.ExitFailure, err
	}
	slog.InfoContext(ctx, "loaded next version",
		"version", result.Version.String(),
		"cached", cached,
		"elapsed", p.opts.Now().Sub(p.started))
	return errutil.ExitSuccess, nil
}

// next returns the cached result when up to date, otherwise calculates and
// refreshes the cache.
func (p *Plugin) next(ctx context.Context) (*versioning.Result, bool, error) {
	if p.status != nil && p.status.UpToDate {
		result, err := p.status.Entry.Result()
		if err == nil {
			return result, true, nil
		}
		slog.WarnContext(ctx, "ignoring unreadable cache entry", "id", p.status.ID, "error", err)
	}

	calc, err := p.calculator.Await(ctx)
	if err != nil {
		return nil, false, err
	}
	result, err := calc.Calculate(ctx, p.repo, p.cfg)
	if err != nil {
		return nil, false, err
	}

	if checker, ok := p.checker.Get(); ok && p.status != nil {
		if err := checker.Recache(p.status, result); err != nil {
			slog.WarnContext(ctx, "could not cache next version", "error", err)
		}
	}
	return result, false, nil
}
