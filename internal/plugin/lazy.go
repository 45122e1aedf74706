// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package plugin

import (
	"context"
	"reflect"

	"github.com/vernuntii/vernuntii/internal/events"
)

// Lazy is a handle to the first plugin registered under a capability
// assignable to T. It resolves at most once and never changes afterwards.
type Lazy[T any] struct {
	registry *Registry
	target   reflect.Type
	resolved *events.Next[T]
	err      error
	// waited is set once a caller subscribed to the outcome.
	waited  bool
	onUnmet []func(error)
}

// First returns a handle to the earliest registration providing T. The
// handle is resolved immediately when such a registration already exists;
// otherwise it resolves when one is applied, or fails when the registry
// completes first.
func First[T any](r *Registry) *Lazy[T] {
	target := reflect.TypeFor[T]()
	l := &Lazy[T]{
		registry: r,
		target:   target,
		resolved: events.NewNext[T]("plugin.lazy." + target.String()),
	}

	for _, reg := range r.registrations {
		if ok, _ := l.tryResolve(reg); ok {
			return l
		}
	}

	if r.completed {
		l.err = ErrUnmetDependency(target)
		return l
	}
	r.addPending(l)
	return l
}

// Resolved reports whether the handle resolved.
func (l *Lazy[T]) Resolved() bool {
	return l.resolved.Fired()
}

// Get returns the resolved plugin, if any.
func (l *Lazy[T]) Get() (T, bool) {
	return l.resolved.Value()
}

// Err returns the failure recorded when the registry completed without a
// matching registration.
func (l *Lazy[T]) Err() error {
	return l.err
}

// OnResolved calls h once with the resolved plugin. When the handle is
// already resolved h runs immediately. A handle still unresolved when the
// registry completes fails the run with UNMET_DEPENDENCY.
func (l *Lazy[T]) OnResolved(h events.Handler[T]) (events.Subscription, error) {
	if v, ok := l.resolved.Value(); ok {
		return l.resolved.Subscribe(h), h(v)
	}
	l.waited = true
	return l.resolved.Subscribe(h, events.Unschedulable(), events.Owner("plugin.lazy")), nil
}

// OnUnmet calls h with the UNMET_DEPENDENCY error when the registry
// completes before the handle resolved. It runs immediately when the
// handle already failed.
func (l *Lazy[T]) OnUnmet(h func(err error)) {
	if l.err != nil {
		h(l.err)
		return
	}
	if l.resolved.Fired() {
		return
	}
	l.waited = true
	l.onUnmet = append(l.onUnmet, h)
}

// Await pumps registrations until the handle resolves. It returns
// UNMET_DEPENDENCY when the registry completed, or as soon as nothing is
// in flight that could still provide T. A capability registered later
// without Init, for example by a plugin executing after the caller, is
// therefore missed; use OnResolved to wait until the run completes.
func (l *Lazy[T]) Await(ctx context.Context) (T, error) {
	var zero T
	for {
		if v, ok := l.resolved.Value(); ok {
			return v, nil
		}
		if l.err != nil {
			return zero, l.err
		}
		if l.registry.completed || l.registry.inflight == 0 {
			return zero, ErrUnmetDependency(l.target)
		}
		if err := l.registry.pump(ctx); err != nil {
			return zero, err
		}
	}
}

func (l *Lazy[T]) tryResolve(reg Registration) (bool, error) {
	if l.resolved.Fired() {
		return true, nil
	}
	if !reg.Provides(l.target) {
		return false, nil
	}
	v, ok := any(reg.Plugin).(T)
	if !ok {
		return false, nil
	}
	return true, l.resolved.Fire(l.registry.ec, v)
}

func (l *Lazy[T]) fail(err error) {
	l.err = err
	for _, h := range l.onUnmet {
		h(err)
	}
	l.onUnmet = nil
}

func (l *Lazy[T]) awaited() bool {
	return l.waited
}

func (l *Lazy[T]) targetType() reflect.Type {
	return l.target
}
