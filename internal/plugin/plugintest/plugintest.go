// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package plugintest provides helpers for testing plugins inside a host.
package plugintest

import (
	"context"

	"github.com/vernuntii/vernuntii/internal/plugin"
)

// Func is a plugin whose OnExecution is a function.
type Func struct {
	PluginName string
	Execute    func(ctx context.Context, run *plugin.Run) error
}

var _ plugin.Executor = (*Func)(nil)

// Name returns PluginName.
func (f *Func) Name() string {
	return f.PluginName
}

// OnExecution calls Execute when set.
func (f *Func) OnExecution(ctx context.Context, run *plugin.Run) error {
	if f.Execute == nil {
		return nil
	}
	return f.Execute(ctx, run)
}

// Require awaits the first plugin providing T.
func Require[T any](ctx context.Context, run *plugin.Run) (T, error) {
	return plugin.First[T](run.Registry).Await(ctx)
}
