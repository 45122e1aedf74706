// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

// Package plugin provides the plugin registry, lazy plugin handles and the
// host that drives one command run through the lifecycle channels.
package plugin

import (
	"context"
	"reflect"
)

// Plugin is the minimal contract every plugin fulfills.
type Plugin interface {
	// Name identifies the plugin in logs and faults.
	Name() string
}

// Initializer is implemented by plugins that need asynchronous setup before
// they count as registered. Init runs on its own goroutine and must not
// touch the registry or any channel.
type Initializer interface {
	Init(ctx context.Context) error
}

// Executor is implemented by plugins that take part in a run. OnExecution
// is called once per run, in registration order, before the first
// lifecycle channel fires. Plugins subscribe to channels here.
type Executor interface {
	OnExecution(ctx context.Context, run *Run) error
}

// Registration records a plugin that completed registration under a
// capability type.
type Registration struct {
	Capability reflect.Type
	Plugin     Plugin
	Order      uint64
}

// Provides reports whether the registration can be handed out as target.
func (r Registration) Provides(target reflect.Type) bool {
	return r.Capability.AssignableTo(target)
}
