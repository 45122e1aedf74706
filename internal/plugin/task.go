// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package plugin

import (
	"context"
	"reflect"
)

// Task tracks one asynchronous registration.
type Task struct {
	registry   *Registry
	capability reflect.Type
	plugin     Plugin
	done       bool
	reg        Registration
	err        error
}

// Capability returns the capability the plugin is registered under.
func (t *Task) Capability() reflect.Type {
	return t.capability
}

// Plugin returns the plugin being registered.
func (t *Task) Plugin() Plugin {
	return t.plugin
}

// Done reports whether the completion was applied.
func (t *Task) Done() bool {
	return t.done
}

// Err returns the registration error once done.
func (t *Task) Err() error {
	return t.err
}

// Await pumps the registry until this task's completion is applied and
// returns the resulting registration.
func (t *Task) Await(ctx context.Context) (Registration, error) {
	for !t.done {
		if err := t.registry.pump(ctx); err != nil {
			return Registration{}, err
		}
	}
	return t.reg, t.err
}

func (t *Task) finish(reg Registration, err error) {
	t.done = true
	t.reg = reg
	t.err = err
}
