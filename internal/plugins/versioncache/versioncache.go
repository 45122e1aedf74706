// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package versioncache provides the plugin that caches calculated versions
// per repository and configuration.
package versioncache

import (
	"context"
	"log/slog"
	"time"

	"github.com/vernuntii/vernuntii/internal/events"
	"github.com/vernuntii/vernuntii/internal/git"
	"github.com/vernuntii/vernuntii/internal/plugin"
	"github.com/vernuntii/vernuntii/internal/plugins/configuration"
	"github.com/vernuntii/vernuntii/internal/versioning"
)

// Name identifies the plugin.
const Name = "versioncache"

// Check is the payload of CheckVersionCache.
type Check struct {
	Repository git.Repository
	Config     *configuration.Config
	// EmptyCaches deletes every entry before checking.
	EmptyCaches bool
}

// Status is the outcome of a check.
type Status struct {
	ID string
	// Entry is the stored entry, nil when none exists.
	Entry *Entry
	// UpToDate is true when Entry may be used instead of calculating.
	UpToDate    bool
	Fingerprint string
	HeadCommit  string
}

// Events are the channels of the plugin.
type Events struct {
	CheckVersionCache   *events.Next[Check]
	CheckedVersionCache *events.Next[*Status]
}

// Checker is the capability other plugins depend on.
type Checker interface {
	Events() *Events
	Check(ctx context.Context, check Check) (*Status, error)
	// Recache stores result under the id of status.
	Recache(status *Status, result *versioning.Result) error
}

// Options configures the plugin.
type Options struct {
	// Dir returns the store directory. Defaults to DefaultDir.
	Dir func() (string, error)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Plugin implements Checker.
type Plugin struct {
	opts   Options
	events *Events
	store  *Store
}

var (
	_ Checker            = (*Plugin)(nil)
	_ plugin.Initializer = (*Plugin)(nil)
	_ plugin.Executor    = (*Plugin)(nil)
)

// New creates the plugin.
func New(opts Options) *Plugin {
	if opts.Dir == nil {
		opts.Dir = DefaultDir
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Plugin{
		opts: opts,
		events: &Events{
			CheckVersionCache:   events.NewNext[Check]("versioncache.check-version-cache"),
			CheckedVersionCache: events.NewNext[*Status]("versioncache.checked-version-cache"),
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

// Init resolves the store directory.
func (p *Plugin) Init(_ context.Context) error {
	dir, err := p.opts.Dir()
	if err != nil {
		return err
	}
	p.store = NewStore(dir)
	return nil
}

// OnExecution answers CheckVersionCache with CheckedVersionCache.
func (p *Plugin) OnExecution(ctx context.Context, run *plugin.Run) error {
	p.events.CheckVersionCache.Subscribe(func(check Check) error {
		status, err := p.Check(ctx, check)
		if err != nil {
			return err
		}
		return events.Fire(run.Bus, p.events.CheckedVersionCache, status)
	}, events.Owner(Name))
	return nil
}

// Check decides whether the stored entry is still valid: same head commit,
// same configuration settings on the same branch and younger than the
// retention.
func (p *Plugin) Check(ctx context.Context, check Check) (*Status, error) {
	if check.EmptyCaches {
		if err := p.store.Empty(); err != nil {
			return nil, err
		}
		slog.DebugContext(ctx, "emptied version caches", "dir", p.store.Dir())
	}

	head, err := check.Repository.HeadCommit(ctx)
	if err != nil {
		return nil, err
	}
	branch, err := check.Repository.ActiveBranch(ctx)
	if err != nil {
		return nil, err
	}
	fingerprint, err := SettingsFingerprint(check.Config, branch.Name)
	if err != nil {
		return nil, err
	}
	retention, err := check.Config.Retention()
	if err != nil {
		return nil, err
	}

	status := &Status{
		ID:          ID(check.Repository.GitDirectory(), check.Config.Path),
		Fingerprint: fingerprint,
		HeadCommit:  head.Sha,
	}
	entry, err := p.store.Load(status.ID)
	if err != nil {
		return nil, err
	}
	status.Entry = entry
	if entry != nil {
		age := p.opts.Now().Sub(entry.CreatedAt)
		status.UpToDate = entry.CommitSha == head.Sha &&
			entry.ConfigFingerprint == fingerprint &&
			age >= 0 && age < retention
	}
	slog.DebugContext(ctx, "checked version cache", "id", status.ID, "up_to_date", status.UpToDate)
	return status, nil
}

// Recache stores result.
func (p *Plugin) Recache(status *Status, result *versioning.Result) error {
	return p.store.Save(status.ID, newEntry(result, status.Fingerprint, p.opts.Now()))
}
